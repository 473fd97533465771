// Package eventhandler wires domain events to their in-process consumers.
package eventhandler

import (
	"context"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/logger"
)

// StatsInvalidator drops cached progress stats for one commitment.
type StatsInvalidator interface {
	InvalidateCommitment(ctx context.Context, commitmentID string) error
}

// StatsCacheInvalidation subscribes to every event that changes a
// commitment's derived numbers and evicts its cached stats. Missing a beat
// here only delays freshness until the cache entry's today component rolls
// over, so failures are logged and dropped.
type StatsCacheInvalidation struct {
	invalidator StatsInvalidator
	log         *logger.Logger
}

// NewStatsCacheInvalidation creates the invalidation handler.
func NewStatsCacheInvalidation(invalidator StatsInvalidator, log *logger.Logger) *StatsCacheInvalidation {
	if log == nil {
		log = logger.Default()
	}
	return &StatsCacheInvalidation{
		invalidator: invalidator,
		log:         log.With(logger.Component("stats_invalidation")),
	}
}

// Register subscribes the handler to all stats-affecting event types.
func (h *StatsCacheInvalidation) Register(bus shared.EventBus) error {
	for _, t := range []shared.EventType{
		shared.EventLogUpserted,
		shared.EventCommitmentStatusChanged,
		shared.EventCommitmentArchived,
		shared.EventCommitmentDatesChanged,
	} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle evicts the stats for the event's aggregate, which is always the
// commitment ID for the subscribed types.
func (h *StatsCacheInvalidation) Handle(event shared.Event) error {
	commitmentID := event.AggregateID()
	if commitmentID == "" {
		return nil
	}

	if err := h.invalidator.InvalidateCommitment(context.Background(), commitmentID); err != nil {
		h.log.Warn("stats cache invalidation failed",
			logger.CommitmentID(commitmentID),
			logger.EventTypeName(string(event.EventType())),
			logger.Err(err),
		)
	}
	return nil
}
