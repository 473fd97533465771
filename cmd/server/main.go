// Package main is the entry point for the Praxis Practice Hub API server.
//
// The server tracks practice commitments: a catalog of practice templates,
// per-user commitments with a lifecycle state machine, idempotent daily
// progress logs, and derived analytics (streaks, completion rate, momentum,
// heatmaps).
//
// The layout follows Clean Architecture and DDD:
// - Domain: pure business rules, no external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL repositories, Redis cache, event bus
// - Interface: HTTP handlers
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/praxis-hub/praxis-practice-hub/config"
	"github.com/praxis-hub/praxis-practice-hub/internal/application/command"
	"github.com/praxis-hub/praxis-practice-hub/internal/application/eventhandler"
	"github.com/praxis-hub/praxis-practice-hub/internal/application/query"
	"github.com/praxis-hub/praxis-practice-hub/internal/infrastructure/messaging"
	"github.com/praxis-hub/praxis-practice-hub/internal/infrastructure/persistence/postgres"
	"github.com/praxis-hub/praxis-practice-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/praxis-hub/praxis-practice-hub/internal/interface/http"
	"github.com/praxis-hub/praxis-practice-hub/internal/interface/http/handlers"
	"github.com/praxis-hub/praxis-practice-hub/pkg/logger"
	"github.com/praxis-hub/praxis-practice-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	})

	log.Info("starting Praxis Practice Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")

	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Migrate {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		// Concurrent replicas race for the migration lock; a short retry
		// absorbs the loser's transient failure.
		err = retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
			return migrator.Migrate(ctx)
		})
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed",
				logger.Int("applied", applied),
				logger.Int("total", len(status)),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional stats cache)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache *redis.Cache
		statsCache *redis.StatsCache
	)

	cacheWanted := !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureCacheStats, nil)
	if cacheWanted {
		log.Info("connecting to Redis")
		err = retry.CacheRetrier().Do(ctx, func(ctx context.Context) error {
			var cacheErr error
			redisCache, cacheErr = redis.NewCache(redis.Config{
				Host:         cfg.Redis.Host,
				Port:         cfg.Redis.Port,
				Password:     cfg.Redis.Password,
				DB:           cfg.Redis.DB,
				PoolSize:     cfg.Redis.PoolSize,
				MinIdleConns: cfg.Redis.MinIdleConns,
				DialTimeout:  cfg.Redis.DialTimeout,
				ReadTimeout:  cfg.Redis.ReadTimeout,
				WriteTimeout: cfg.Redis.WriteTimeout,
			})
			return cacheErr
		})
		if err != nil {
			// Stats queries recompute on every read without the cache.
			log.Warn("failed to connect to Redis, stats caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			statsCache = redis.NewStatsCache(redisCache, log)
			log.Info("Redis connection established")
		}
	} else {
		log.Info("stats cache disabled by configuration")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories")
	practiceRepo := postgres.NewPracticeRepository(dbConn)
	commitmentRepo := postgres.NewCommitmentRepository(dbConn)
	logRepo := postgres.NewLogRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus",
		logger.Int("worker_pool_size", cfg.EventBus.WorkerPoolSize),
	)
	eventBus := messaging.NewInMemoryEventBus(messaging.Config{
		WorkerPoolSize: cfg.EventBus.WorkerPoolSize,
		Logger:         log,
	})
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	createPracticeCmd := command.NewCreatePracticeHandler(practiceRepo, eventBus)
	updatePracticeCmd := command.NewUpdatePracticeHandler(practiceRepo, eventBus)
	removePracticeCmd := command.NewRemovePracticeHandler(practiceRepo, commitmentRepo, eventBus)
	joinPracticeCmd := command.NewJoinPracticeHandler(practiceRepo, commitmentRepo, eventBus)
	leavePracticeCmd := command.NewLeavePracticeHandler(commitmentRepo, logRepo, eventBus)
	updateCommitmentCmd := command.NewUpdateCommitmentHandler(commitmentRepo, eventBus)
	logProgressCmd := command.NewLogProgressHandler(practiceRepo, commitmentRepo, logRepo, eventBus)
	completeAllCmd := command.NewCompleteAllHandler(practiceRepo, commitmentRepo, logRepo, eventBus)

	// A nil *redis.StatsCache must not reach the interface field, or the
	// nil check inside the query handler would pass and panic on use.
	var progressCache query.StatsCache
	if statsCache != nil {
		progressCache = statsCache
	}

	browsePracticesQry := query.NewBrowsePracticesHandler(practiceRepo)
	getPracticeQry := query.NewGetPracticeHandler(practiceRepo)
	listCommitmentsQry := query.NewListCommitmentsHandler(practiceRepo, commitmentRepo)
	getProgressQry := query.NewGetProgressHandler(commitmentRepo, logRepo, progressCache)
	getHeatmapQry := query.NewGetHeatmapHandler(commitmentRepo, logRepo)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if statsCache != nil {
		log.Info("registering event handlers")
		invalidation := eventhandler.NewStatsCacheInvalidation(statsCache, log)
		if err := invalidation.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register stats invalidation handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewPingCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("redis", handlers.NewPingCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.Server.Host
	httpConfig.Port = cfg.Server.Port
	httpConfig.ReadTimeout = cfg.Server.ReadTimeout
	httpConfig.WriteTimeout = cfg.Server.WriteTimeout
	httpConfig.IdleTimeout = cfg.Server.IdleTimeout
	httpConfig.EnableCORS = cfg.Server.EnableCORS
	httpConfig.AllowedOrigins = cfg.Server.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.Server.RateLimitPerMinute
	httpConfig.APIKeyHeader = cfg.Server.APIKeyHeader
	httpConfig.APIKeyHashes = cfg.Server.APIKeyHashes
	httpConfig.AdminAPIKeyHashes = cfg.Server.AdminAPIKeyHashes

	httpDeps := httpserver.Dependencies{
		CreatePracticeHandler:   createPracticeCmd,
		UpdatePracticeHandler:   updatePracticeCmd,
		RemovePracticeHandler:   removePracticeCmd,
		JoinPracticeHandler:     joinPracticeCmd,
		LeavePracticeHandler:    leavePracticeCmd,
		UpdateCommitmentHandler: updateCommitmentCmd,
		LogProgressHandler:      logProgressCmd,
		CompleteAllHandler:      completeAllCmd,
		BrowsePracticesHandler:  browsePracticesQry,
		GetPracticeHandler:      getPracticeQry,
		ListCommitmentsHandler:  listCommitmentsQry,
		GetProgressHandler:      getProgressQry,
		GetHeatmapHandler:       getHeatmapQry,
		Logger:                  log,
		HealthChecker:           healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. START + GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := httpServer.StartAsync()

	log.Info("Praxis Practice Hub is running",
		logger.String("address", httpServer.Address()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", logger.Err(err))
			return err
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown",
		logger.String("timeout", cfg.App.ShutdownTimeout.String()),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	// Event bus and database close via defers, after in-flight event
	// handlers drain.
	log.Info("shutdown completed")
	return nil
}
