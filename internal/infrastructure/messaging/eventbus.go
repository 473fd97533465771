// Package messaging implements the in-process event bus. Events are
// advisory notifications (log upserts, commitment transitions) consumed by
// cache invalidation; delivery is at-most-once and handler errors never
// propagate to publishers.
package messaging

import (
	"errors"
	"sync"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/logger"
)

// ErrEventBusClosed is returned when publishing or subscribing after Close.
var ErrEventBusClosed = errors.New("event bus is closed")

// InMemoryEventBus is a single-process implementation of shared.EventBus.
// Handlers run asynchronously through a bounded worker pool so a slow
// handler never blocks the write path.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	workerPool  chan struct{}
	log         *logger.Logger
	closed      bool
	wg          sync.WaitGroup
}

// Config contains event bus configuration.
type Config struct {
	// WorkerPoolSize bounds concurrent handler executions.
	WorkerPoolSize int

	Logger *logger.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(cfg Config) *InMemoryEventBus {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		workerPool: make(chan struct{}, cfg.WorkerPoolSize),
		log:        cfg.Logger.With(logger.Component("eventbus")),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers the event to all matching handlers. Each handler runs in
// its own goroutine gated by the worker pool; an error or panic is logged
// and swallowed so one handler's failure never reaches the publisher.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	targets = append(targets, b.handlers[event.EventType()]...)
	targets = append(targets, b.allHandlers...)
	b.mu.RUnlock()

	for _, handler := range targets {
		handler := handler
		b.wg.Add(1)
		b.workerPool <- struct{}{}
		go func() {
			defer b.wg.Done()
			defer func() { <-b.workerPool }()
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panicked",
						logger.EventTypeName(string(event.EventType())),
						logger.String("aggregate_id", event.AggregateID()),
						logger.Any("panic", r),
					)
				}
			}()
			if err := handler(event); err != nil {
				b.log.Error("event handler failed",
					logger.EventTypeName(string(event.EventType())),
					logger.String("aggregate_id", event.AggregateID()),
					logger.Err(err),
				)
			}
		}()
	}

	return nil
}

// Close stops accepting events and waits for in-flight handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
