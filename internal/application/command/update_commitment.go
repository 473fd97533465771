package command

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE COMMITMENT COMMAND
// Adjusts a commitment's lifecycle status, date window, or target value.
// Absent fields leave the stored state untouched so callers can patch one
// aspect at a time.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateCommitmentCommand contains the fields to change. Nil or zero fields
// are left as they are.
type UpdateCommitmentCommand struct {
	// UserID is the acting user; must own the commitment.
	UserID string

	// CommitmentID is the commitment to update.
	CommitmentID string

	// Status is the requested lifecycle state, empty for no change.
	// ARCHIVED routes through the archive path and is terminal.
	Status *commitment.Status

	// StartDate moves the window start when non-zero.
	StartDate time.Time

	// EndDate moves the window end when non-zero.
	EndDate time.Time

	// ClearEndDate reopens the commitment; mutually exclusive with EndDate.
	ClearEndDate bool

	// TargetValue replaces the per-day goal when set.
	TargetValue *float64

	// ClearTarget removes the per-day goal.
	ClearTarget bool
}

// Validate validates the command.
func (c UpdateCommitmentCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("command", "UpdateCommitment", shared.ErrEmptyValue, "user_id is required")
	}
	if c.CommitmentID == "" {
		return shared.NewDomainError("command", "UpdateCommitment", shared.ErrEmptyValue, "commitment_id is required")
	}
	if c.ClearEndDate && !c.EndDate.IsZero() {
		return shared.NewDomainError("command", "UpdateCommitment", shared.ErrInvalidInput,
			"end_date and clear_end_date are mutually exclusive")
	}
	if c.Status != nil && !c.Status.IsValid() {
		return shared.ErrInvalidStatus
	}
	return nil
}

// UpdateCommitmentResult contains the updated commitment.
type UpdateCommitmentResult struct {
	Commitment *commitment.Commitment
}

// UpdateCommitmentHandler handles the UpdateCommitmentCommand.
type UpdateCommitmentHandler struct {
	commitments commitment.Repository
	events      shared.EventBus
}

// NewUpdateCommitmentHandler creates a new UpdateCommitmentHandler.
func NewUpdateCommitmentHandler(commitments commitment.Repository, events shared.EventBus) *UpdateCommitmentHandler {
	return &UpdateCommitmentHandler{commitments: commitments, events: events}
}

// Handle executes the update commitment command.
func (h *UpdateCommitmentHandler) Handle(ctx context.Context, cmd UpdateCommitmentCommand) (*UpdateCommitmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cmt, err := h.commitments.GetByID(ctx, cmd.CommitmentID)
	if err != nil {
		return nil, fmt.Errorf("update_commitment: %w", err)
	}
	if cmt.UserID != cmd.UserID {
		return nil, shared.ErrForbidden
	}

	oldStatus := cmt.Status
	datesChanged := false

	if !cmd.StartDate.IsZero() || !cmd.EndDate.IsZero() || cmd.ClearEndDate {
		if err := cmt.UpdateDates(cmd.StartDate, cmd.EndDate, cmd.ClearEndDate); err != nil {
			return nil, err
		}
		datesChanged = true
	}

	if cmd.TargetValue != nil {
		cmt.SetTarget(cmd.TargetValue)
	} else if cmd.ClearTarget {
		cmt.SetTarget(nil)
	}

	if cmd.Status != nil && *cmd.Status != cmt.Status {
		if err := cmt.SetStatus(*cmd.Status); err != nil {
			return nil, err
		}
	}

	if err := h.commitments.Update(ctx, cmt); err != nil {
		return nil, fmt.Errorf("update_commitment: %w", err)
	}

	if datesChanged {
		end := ""
		if cmt.EndDate != nil {
			end = dateutil.Format(*cmt.EndDate)
		}
		_ = h.events.Publish(shared.NewCommitmentDatesChangedEvent(
			cmt.ID, cmt.UserID, dateutil.Format(cmt.StartDate), end,
		))
	}
	if cmt.Status != oldStatus {
		_ = h.events.Publish(shared.NewCommitmentStatusChangedEvent(
			cmt.ID, cmt.UserID, oldStatus.String(), cmt.Status.String(),
		))
	}

	return &UpdateCommitmentResult{Commitment: cmt}, nil
}
