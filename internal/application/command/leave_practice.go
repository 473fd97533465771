package command

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEAVE PRACTICE COMMAND
// Archives a commitment, capping its end date so the archived interval covers
// exactly the days the user actually tracked: today when today is already
// logged, otherwise yesterday, never before the start date. Logs are kept.
// ══════════════════════════════════════════════════════════════════════════════

// LeavePracticeCommand identifies the commitment to archive.
type LeavePracticeCommand struct {
	// UserID is the acting user; must own the commitment.
	UserID string

	// CommitmentID is the commitment to archive.
	CommitmentID string
}

// Validate validates the command.
func (c LeavePracticeCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("command", "LeavePractice", shared.ErrEmptyValue, "user_id is required")
	}
	if c.CommitmentID == "" {
		return shared.NewDomainError("command", "LeavePractice", shared.ErrEmptyValue, "commitment_id is required")
	}
	return nil
}

// LeavePracticeResult contains the archived commitment.
type LeavePracticeResult struct {
	Commitment *commitment.Commitment

	// AlreadyArchived is true when the commitment was archived before this
	// call; leave is idempotent and reports success either way.
	AlreadyArchived bool
}

// LeavePracticeHandler handles the LeavePracticeCommand.
type LeavePracticeHandler struct {
	commitments commitment.Repository
	logs        practicelog.Repository
	events      shared.EventBus
	now         func() time.Time
}

// NewLeavePracticeHandler creates a new LeavePracticeHandler.
func NewLeavePracticeHandler(
	commitments commitment.Repository,
	logs practicelog.Repository,
	events shared.EventBus,
) *LeavePracticeHandler {
	return &LeavePracticeHandler{
		commitments: commitments,
		logs:        logs,
		events:      events,
		now:         time.Now,
	}
}

// Handle executes the leave practice command.
func (h *LeavePracticeHandler) Handle(ctx context.Context, cmd LeavePracticeCommand) (*LeavePracticeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cmt, err := h.commitments.GetByID(ctx, cmd.CommitmentID)
	if err != nil {
		return nil, fmt.Errorf("leave_practice: %w", err)
	}
	if cmt.UserID != cmd.UserID {
		return nil, shared.ErrForbidden
	}

	if cmt.Status == commitment.StatusArchived {
		return &LeavePracticeResult{Commitment: cmt, AlreadyArchived: true}, nil
	}

	oldStatus := cmt.Status
	end := h.effectiveEndDate(ctx, cmt)
	cmt.Archive(&end)

	if err := h.commitments.Update(ctx, cmt); err != nil {
		return nil, fmt.Errorf("leave_practice: %w", err)
	}

	_ = h.events.Publish(shared.NewCommitmentStatusChangedEvent(
		cmt.ID, cmt.UserID, oldStatus.String(), cmt.Status.String(),
	))

	return &LeavePracticeResult{Commitment: cmt}, nil
}

// effectiveEndDate picks the cap for an archived commitment: today when a
// log exists for today, otherwise yesterday. Archive itself clamps the
// result so it never precedes the start date.
func (h *LeavePracticeHandler) effectiveEndDate(ctx context.Context, cmt *commitment.Commitment) time.Time {
	today := dateutil.Normalize(h.now().UTC())

	if _, err := h.logs.GetForDate(ctx, cmt.ID, today); err == nil {
		return today
	}
	// No log today, or the lookup failed; either way yesterday is the
	// conservative cap.
	return dateutil.PrevDay(today)
}
