package command

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG PROGRESS COMMAND
// Upserts the ledger entry for (commitment, date). Submitting the same day
// twice overwrites: completed is always taken from the payload, value and
// notes only when present. The write is a single atomic statement so
// concurrent submissions for the same day settle as last-writer-wins with
// exactly one row.
// ══════════════════════════════════════════════════════════════════════════════

// LogProgressCommand contains one day's outcome for a commitment.
type LogProgressCommand struct {
	// UserID is the acting user; must own the commitment.
	UserID string

	// CommitmentID is the commitment being logged.
	CommitmentID string

	// Date is the calendar day; defaults to today when zero.
	Date time.Time

	// Completed records whether the practice was done.
	Completed bool

	// Value is required for NUMERIC practices.
	Value *float64

	// Notes is optional free text; nil preserves an existing note.
	Notes *string
}

// Validate validates the command fields that need no repository access.
func (c LogProgressCommand) Validate() error {
	if c.UserID == "" {
		return shared.NewDomainError("command", "LogProgress", shared.ErrEmptyValue, "user_id is required")
	}
	if c.CommitmentID == "" {
		return shared.NewDomainError("command", "LogProgress", shared.ErrEmptyValue, "commitment_id is required")
	}
	return nil
}

// LogProgressResult contains the stored entry.
type LogProgressResult struct {
	Entry *practicelog.Entry

	// Created is false when an existing entry was overwritten.
	Created bool
}

// LogProgressHandler handles the LogProgressCommand.
type LogProgressHandler struct {
	templates   practice.Repository
	commitments commitment.Repository
	logs        practicelog.Repository
	events      shared.EventBus
	now         func() time.Time
}

// NewLogProgressHandler creates a new LogProgressHandler.
func NewLogProgressHandler(
	templates practice.Repository,
	commitments commitment.Repository,
	logs practicelog.Repository,
	events shared.EventBus,
) *LogProgressHandler {
	return &LogProgressHandler{
		templates:   templates,
		commitments: commitments,
		logs:        logs,
		events:      events,
		now:         time.Now,
	}
}

// Handle executes the log progress command.
func (h *LogProgressHandler) Handle(ctx context.Context, cmd LogProgressCommand) (*LogProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	cmt, err := h.commitments.GetByID(ctx, cmd.CommitmentID)
	if err != nil {
		return nil, fmt.Errorf("log_progress: %w", err)
	}
	if cmt.UserID != cmd.UserID {
		return nil, shared.ErrForbidden
	}
	if cmt.Status == commitment.StatusArchived {
		return nil, shared.ErrCommitmentArchived
	}

	today := dateutil.Normalize(h.now().UTC())
	date := cmd.Date
	if date.IsZero() {
		date = today
	} else {
		date = dateutil.Normalize(date)
	}

	// Future days cannot be logged; backfilling past days is allowed.
	if dateutil.AfterDay(date, today) {
		return nil, shared.NewDomainError("command", "LogProgress", shared.ErrValidation,
			"cannot log a future date")
	}
	if !cmt.CoversDate(date) {
		return nil, shared.NewDomainError("command", "LogProgress", shared.ErrValidation,
			"date is outside the commitment window")
	}

	tpl, err := h.templates.GetByID(ctx, cmt.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("log_progress: %w", err)
	}

	payload := practicelog.Payload{
		Completed: cmd.Completed,
		Value:     cmd.Value,
		Notes:     cmd.Notes,
	}
	if err := payload.Validate(tpl.Tracking); err != nil {
		return nil, err
	}

	entry, created, err := h.logs.Upsert(ctx, cmt.ID, date, payload)
	if err != nil {
		return nil, fmt.Errorf("log_progress: %w", err)
	}

	_ = h.events.Publish(shared.NewLogUpsertedEvent(
		cmt.ID, dateutil.Format(date), entry.Completed, created,
	))

	return &LogProgressResult{Entry: entry, Created: created}, nil
}
