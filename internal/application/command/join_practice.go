// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOIN PRACTICE COMMAND
// Creates an ACTIVE commitment linking a user to a catalog template or one of
// their custom practices. At most one non-archived commitment may exist per
// (user, template); the storage layer enforces that under concurrency.
// ══════════════════════════════════════════════════════════════════════════════

// JoinPracticeCommand contains the data to join a practice.
type JoinPracticeCommand struct {
	// UserID is the joining user.
	UserID string

	// TemplateID is the practice template to commit to.
	TemplateID string

	// StartDate is the first tracked day; defaults to today when zero.
	StartDate time.Time

	// EndDate is the optional last tracked day.
	EndDate *time.Time

	// TargetValue is the optional per-day goal for NUMERIC practices.
	TargetValue *float64
}

// Validate validates the command.
func (c JoinPracticeCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("command", "JoinPractice", shared.ErrEmptyValue, "user_id is required")
	}
	if c.TemplateID == "" {
		return shared.NewDomainError("command", "JoinPractice", shared.ErrEmptyValue, "template_id is required")
	}
	return nil
}

// JoinPracticeResult contains the created commitment.
type JoinPracticeResult struct {
	Commitment *commitment.Commitment
}

// JoinPracticeHandler handles the JoinPracticeCommand.
type JoinPracticeHandler struct {
	templates   practice.Repository
	commitments commitment.Repository
	events      shared.EventBus
}

// NewJoinPracticeHandler creates a new JoinPracticeHandler.
func NewJoinPracticeHandler(
	templates practice.Repository,
	commitments commitment.Repository,
	events shared.EventBus,
) *JoinPracticeHandler {
	return &JoinPracticeHandler{
		templates:   templates,
		commitments: commitments,
		events:      events,
	}
}

// Handle executes the join practice command.
func (h *JoinPracticeHandler) Handle(ctx context.Context, cmd JoinPracticeCommand) (*JoinPracticeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	tpl, err := h.templates.GetByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("join_practice: %w", err)
	}
	if !tpl.Joinable() {
		return nil, shared.ErrPracticeDisabled
	}
	// Custom practices are joinable by their owner only.
	if tpl.CreatorID != "" && !tpl.OwnedBy(cmd.UserID) {
		return nil, shared.ErrForbidden
	}

	start := cmd.StartDate
	if start.IsZero() {
		start = dateutil.Today(time.UTC)
	}

	cmt, err := commitment.New(cmd.UserID, cmd.TemplateID, start, cmd.EndDate, cmd.TargetValue)
	if err != nil {
		return nil, err
	}

	// The repository maps the partial unique index violation to
	// ErrCommitmentExists, so a concurrent duplicate join loses cleanly.
	if err := h.commitments.Create(ctx, cmt); err != nil {
		return nil, fmt.Errorf("join_practice: %w", err)
	}

	_ = h.events.Publish(shared.NewCommitmentJoinedEvent(
		cmt.ID, cmt.UserID, cmt.TemplateID, dateutil.Format(cmt.StartDate),
	))

	return &JoinPracticeResult{Commitment: cmt}, nil
}
