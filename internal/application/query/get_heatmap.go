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
// GET HEATMAP QUERY
// Builds the week-aligned calendar grid for a commitment's window. Windows
// over a year long are refused with ErrWindowTooLarge rather than rendered.
// ══════════════════════════════════════════════════════════════════════════════

// GetHeatmapQuery contains heatmap parameters.
type GetHeatmapQuery struct {
	// UserID is the acting user; must own the commitment.
	UserID string

	// CommitmentID is the commitment to render.
	CommitmentID string

	// From and To bound the grid window, inclusive. Zero values default
	// like GetProgressQuery: commitment start and today.
	From time.Time
	To   time.Time
}

// Validate validates the query.
func (q GetHeatmapQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("query", "GetHeatmap", shared.ErrEmptyValue, "user_id is required")
	}
	if q.CommitmentID == "" {
		return shared.NewDomainError("query", "GetHeatmap", shared.ErrEmptyValue, "commitment_id is required")
	}
	return nil
}

// GetHeatmapResult contains the rendered grid.
type GetHeatmapResult struct {
	Grid   analytics.Grid
	Window shared.DateRange
}

// GetHeatmapHandler handles the GetHeatmapQuery.
type GetHeatmapHandler struct {
	commitments commitment.Repository
	logs        practicelog.Repository
	now         func() time.Time
}

// NewGetHeatmapHandler creates a new GetHeatmapHandler.
func NewGetHeatmapHandler(commitments commitment.Repository, logs practicelog.Repository) *GetHeatmapHandler {
	return &GetHeatmapHandler{commitments: commitments, logs: logs, now: time.Now}
}

// Handle executes the get heatmap query.
func (h *GetHeatmapHandler) Handle(ctx context.Context, q GetHeatmapQuery) (*GetHeatmapResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	cmt, err := h.commitments.GetByID(ctx, q.CommitmentID)
	if err != nil {
		return nil, fmt.Errorf("get_heatmap: %w", err)
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
	if dateutil.DaysBetween(window.Start, window.End) > analytics.MaxGridDays {
		return nil, shared.ErrWindowTooLarge
	}

	logs, err := h.logs.List(ctx, cmt.ID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("get_heatmap: %w", err)
	}

	return &GetHeatmapResult{
		Grid:   analytics.BuildGrid(logs, window, today),
		Window: window,
	}, nil
}
