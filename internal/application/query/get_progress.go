package query

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/analytics"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Derives a commitment's analytics for a window: completion rate, streaks,
// momentum, tier. Results are read through a cache keyed by
// (commitment, window, today); log upserts and commitment changes
// invalidate it, and the today component ages entries out at midnight.
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache caches computed progress stats. A miss is (nil, false); cache
// failures degrade to recomputation, never to an error.
type StatsCache interface {
	Get(ctx context.Context, commitmentID string, window shared.DateRange, today time.Time) (*analytics.ProgressStats, bool)
	Set(ctx context.Context, commitmentID string, window shared.DateRange, today time.Time, stats analytics.ProgressStats)
}

// GetProgressQuery contains progress computation parameters.
type GetProgressQuery struct {
	// UserID is the acting user; must own the commitment.
	UserID string

	// CommitmentID is the commitment to analyze.
	CommitmentID string

	// From and To bound the analysis window, inclusive. A zero To
	// defaults to today; a zero From defaults to the commitment start.
	From time.Time
	To   time.Time
}

// Validate validates the query.
func (q GetProgressQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("query", "GetProgress", shared.ErrEmptyValue, "user_id is required")
	}
	if q.CommitmentID == "" {
		return shared.NewDomainError("query", "GetProgress", shared.ErrEmptyValue, "commitment_id is required")
	}
	return nil
}

// GetProgressResult contains the derived stats.
type GetProgressResult struct {
	Stats analytics.ProgressStats

	// Window is the requested window after defaulting.
	Window shared.DateRange

	// FromCache is true when the stats were served without recomputation.
	FromCache bool
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	commitments commitment.Repository
	logs        practicelog.Repository
	cache       StatsCache
	now         func() time.Time
}

// NewGetProgressHandler creates a new GetProgressHandler. The cache may be
// nil; every query then recomputes.
func NewGetProgressHandler(
	commitments commitment.Repository,
	logs practicelog.Repository,
	cache StatsCache,
) *GetProgressHandler {
	return &GetProgressHandler{
		commitments: commitments,
		logs:        logs,
		cache:       cache,
		now:         time.Now,
	}
}

// Handle executes the get progress query.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*GetProgressResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	cmt, err := h.commitments.GetByID(ctx, q.CommitmentID)
	if err != nil {
		return nil, fmt.Errorf("get_progress: %w", err)
	}
	if cmt.UserID != q.UserID {
		return nil, shared.ErrForbidden
	}

	today := dateutil.Normalize(h.now().UTC())

	from := q.From
	if from.IsZero() {
		from = cmt.StartDate
	}
	to := q.To
	if to.IsZero() {
		to = today
	}
	window, err := shared.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if stats, ok := h.cache.Get(ctx, cmt.ID, window, today); ok {
			return &GetProgressResult{Stats: *stats, Window: window, FromCache: true}, nil
		}
	}

	// Momentum looks back 14 days from today, which may precede the
	// window, so the full ledger is loaded rather than a window slice.
	logs, err := h.logs.List(ctx, cmt.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("get_progress: %w", err)
	}

	stats := analytics.ComputeStats(cmt, logs, window, today)

	if h.cache != nil {
		h.cache.Set(ctx, cmt.ID, window, today, stats)
	}

	return &GetProgressResult{Stats: stats, Window: window}, nil
}
