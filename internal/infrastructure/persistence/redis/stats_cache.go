package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/analytics"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/circuitbreaker"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
	"github.com/praxis-hub/praxis-practice-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// Read-through cache for computed progress stats. Keys carry the window
// bounds and today's date, so an entry can never serve a stale "today":
// the key itself changes at midnight.
// ══════════════════════════════════════════════════════════════════════════════

// PrefixStats is the key prefix for cached progress stats.
const PrefixStats = "stats:"

// TTLStats bounds how long computed stats live without invalidation.
// Invalidation on writes usually evicts entries far sooner.
const TTLStats = 15 * time.Minute

// StatsCache stores computed progress stats in Redis. It satisfies both
// the query-side cache port and the event-side invalidator port. A
// circuit breaker keeps a dead Redis from adding a connect timeout to
// every progress read.
type StatsCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewStatsCache creates a StatsCache over the given cache client.
func NewStatsCache(cache *Cache, log *logger.Logger) *StatsCache {
	log = log.With(logger.Component("stats_cache"))
	breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("cache breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()))
	})
	return &StatsCache{
		cache:   cache,
		ttl:     TTLStats,
		breaker: breaker,
		log:     log,
	}
}

// statsKey builds stats:{commitmentID}:{start}:{end}:{today}.
func statsKey(commitmentID string, window shared.DateRange, today time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s:%s",
		PrefixStats,
		commitmentID,
		dateutil.Key(window.Start),
		dateutil.Key(window.End),
		dateutil.Key(today),
	)
}

// Get returns cached stats for the commitment and window, or (nil, false)
// on a miss. Redis failures degrade to a miss so reads never break on a
// cache outage.
func (s *StatsCache) Get(ctx context.Context, commitmentID string, window shared.DateRange, today time.Time) (*analytics.ProgressStats, bool) {
	var stats analytics.ProgressStats
	var miss bool
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		err := s.cache.Get(ctx, statsKey(commitmentID, window, today), &stats)
		if err == ErrCacheMiss {
			// A miss is a healthy outcome, not a breaker failure.
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, circuitbreaker.ErrCircuitOpen) && !errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			s.log.Warn("stats cache read failed",
				logger.CommitmentID(commitmentID),
				logger.Err(err))
		}
		return nil, false
	}
	if miss {
		return nil, false
	}
	return &stats, true
}

// Set stores computed stats. Write failures are logged and dropped; the
// next read recomputes.
func (s *StatsCache) Set(ctx context.Context, commitmentID string, window shared.DateRange, today time.Time, stats analytics.ProgressStats) {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.Set(ctx, statsKey(commitmentID, window, today), stats, s.ttl)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) && !errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		s.log.Warn("stats cache write failed",
			logger.CommitmentID(commitmentID),
			logger.Err(err))
	}
}

// InvalidateCommitment drops every cached window for the commitment.
func (s *StatsCache) InvalidateCommitment(ctx context.Context, commitmentID string) error {
	pattern := PrefixStats + commitmentID + ":*"
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.cache.DeleteByPattern(ctx, pattern)
	})
	if err != nil {
		return fmt.Errorf("invalidate stats for commitment %s: %w", commitmentID, err)
	}
	return nil
}
