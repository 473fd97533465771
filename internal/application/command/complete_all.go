package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE ALL COMMAND
// Bulk-completes today for every ACTIVE BOOLEAN commitment of the user that
// has no completed entry yet. Items are processed independently: one failure
// never rolls back the others, and the result reports both counts.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteAllCommand identifies the user whose day to bulk-complete.
type CompleteAllCommand struct {
	// UserID is the acting user.
	UserID string

	// Date is the day to complete; defaults to today when zero. Future
	// days are rejected like any other log write.
	Date time.Time
}

// Validate validates the command.
func (c CompleteAllCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("command", "CompleteAll", shared.ErrEmptyValue, "user_id is required")
	}
	return nil
}

// CompleteAllResult reports the outcome per commitment.
type CompleteAllResult struct {
	// Completed lists commitment IDs newly marked complete.
	Completed []string

	// Skipped lists commitments that were not eligible: non-BOOLEAN
	// tracking, already completed for the day, or not covering the date.
	Skipped []string

	// Failed maps commitment IDs to the error that stopped their write.
	Failed map[string]error
}

// CompleteAllHandler handles the CompleteAllCommand.
type CompleteAllHandler struct {
	templates   practice.Repository
	commitments commitment.Repository
	logs        practicelog.Repository
	events      shared.EventBus
	now         func() time.Time
}

// NewCompleteAllHandler creates a new CompleteAllHandler.
func NewCompleteAllHandler(
	templates practice.Repository,
	commitments commitment.Repository,
	logs practicelog.Repository,
	events shared.EventBus,
) *CompleteAllHandler {
	return &CompleteAllHandler{
		templates:   templates,
		commitments: commitments,
		logs:        logs,
		events:      events,
		now:         time.Now,
	}
}

// Handle executes the complete all command.
func (h *CompleteAllHandler) Handle(ctx context.Context, cmd CompleteAllCommand) (*CompleteAllResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	today := dateutil.Normalize(h.now().UTC())
	date := cmd.Date
	if date.IsZero() {
		date = today
	} else {
		date = dateutil.Normalize(date)
	}
	if dateutil.AfterDay(date, today) {
		return nil, shared.NewDomainError("command", "CompleteAll", shared.ErrValidation,
			"cannot log a future date")
	}

	cmts, err := h.commitments.ListForUser(ctx, cmd.UserID, commitment.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("complete_all: %w", err)
	}

	result := &CompleteAllResult{Failed: make(map[string]error)}

	for _, cmt := range cmts {
		if cmt.Status != commitment.StatusActive || !cmt.CoversDate(date) {
			result.Skipped = append(result.Skipped, cmt.ID)
			continue
		}

		tpl, err := h.templates.GetByID(ctx, cmt.TemplateID)
		if err != nil {
			result.Failed[cmt.ID] = err
			continue
		}
		if tpl.Tracking != practice.TrackingBoolean {
			result.Skipped = append(result.Skipped, cmt.ID)
			continue
		}

		// Leave already-completed days alone so bulk completion never
		// clobbers an entry the user wrote by hand.
		existing, err := h.logs.GetForDate(ctx, cmt.ID, date)
		switch {
		case err == nil && existing.Completed:
			result.Skipped = append(result.Skipped, cmt.ID)
			continue
		case err != nil && !errors.Is(err, shared.ErrLogNotFound):
			result.Failed[cmt.ID] = err
			continue
		}

		entry, created, err := h.logs.Upsert(ctx, cmt.ID, date, practicelog.Payload{Completed: true})
		if err != nil {
			result.Failed[cmt.ID] = err
			continue
		}

		_ = h.events.Publish(shared.NewLogUpsertedEvent(
			cmt.ID, dateutil.Format(date), entry.Completed, created,
		))
		result.Completed = append(result.Completed, cmt.ID)
	}

	return result, nil
}
