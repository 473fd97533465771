// Package commitment owns a user's time-bounded, status-tracked link to a
// practice template: the join/pause/complete/archive state machine and its
// invariants. At most one non-archived commitment may exist per
// (user, template) pair; re-joining after archival creates a fresh row so
// historical logs stay attached to the archived one.
package commitment

import (
	"time"

	"github.com/google/uuid"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// STATUS STATE MACHINE
// ═══════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of a commitment.
type Status string

const (
	// StatusActive - the user is currently tracking the practice.
	StatusActive Status = "ACTIVE"

	// StatusPaused - tracking is suspended but the commitment is current.
	StatusPaused Status = "PAUSED"

	// StatusCompleted - the user finished the commitment period.
	StatusCompleted Status = "COMPLETED"

	// StatusArchived - terminal. Set by leaving; logs are retained.
	StatusArchived Status = "ARCHIVED"
)

// IsValid checks if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a string into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", shared.ErrInvalidStatus
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// COMMITMENT ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Commitment links a user to a practice template for a date interval.
// StartDate is inclusive; EndDate is inclusive and nil when open-ended.
type Commitment struct {
	// ID is the internal UUID.
	ID string

	// UserID scopes the commitment to its owner.
	UserID string

	// TemplateID references the practice template.
	TemplateID string

	// Status is the current lifecycle state.
	Status Status

	// StartDate is the first tracked calendar day (midnight UTC).
	StartDate time.Time

	// EndDate is the last tracked calendar day, nil when open-ended.
	EndDate *time.Time

	// TargetValue is the per-day goal for NUMERIC practices.
	TargetValue *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates an ACTIVE commitment. The caller defaults startDate to today
// when the user did not supply one.
func New(userID, templateID string, startDate time.Time, endDate *time.Time, targetValue *float64) (*Commitment, error) {
	if userID == "" {
		return nil, shared.NewDomainError("commitment", "New", shared.ErrEmptyValue, "user ID is required")
	}
	if templateID == "" {
		return nil, shared.NewDomainError("commitment", "New", shared.ErrEmptyValue, "template ID is required")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("commitment", "New", shared.ErrEmptyValue, "start date is required")
	}

	start := dateutil.Normalize(startDate)
	var end *time.Time
	if endDate != nil {
		e := dateutil.Normalize(*endDate)
		if dateutil.BeforeDay(e, start) {
			return nil, shared.ErrDateOrder
		}
		end = &e
	}

	now := time.Now().UTC()
	return &Commitment{
		ID:          uuid.New().String(),
		UserID:      userID,
		TemplateID:  templateID,
		Status:      StatusActive,
		StartDate:   start,
		EndDate:     end,
		TargetValue: targetValue,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus transitions the lifecycle state. Any movement among
// ACTIVE/PAUSED/COMPLETED is allowed; ARCHIVED is entered via Archive and
// is terminal, so any attempt to leave it fails.
func (c *Commitment) SetStatus(next Status) error {
	if !next.IsValid() {
		return shared.ErrInvalidStatus
	}
	if c.Status.IsTerminal() {
		return shared.ErrCommitmentArchived
	}
	if next == StatusArchived {
		c.Archive(nil)
		return nil
	}

	c.Status = next
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Archive marks the commitment ARCHIVED, optionally capping its end date.
// Archiving an already archived commitment is a no-op: leave is idempotent.
func (c *Commitment) Archive(endDate *time.Time) {
	if c.Status == StatusArchived {
		return
	}
	if endDate != nil {
		e := dateutil.Normalize(*endDate)
		// The cap never moves the end before the start day.
		if dateutil.BeforeDay(e, c.StartDate) {
			e = c.StartDate
		}
		c.EndDate = &e
	}
	c.Status = StatusArchived
	c.UpdatedAt = time.Now().UTC()
}

// UpdateDates moves the commitment window. Zero times leave the
// corresponding bound unchanged; clearEnd removes the end date.
func (c *Commitment) UpdateDates(startDate, endDate time.Time, clearEnd bool) error {
	if c.Status.IsTerminal() {
		return shared.ErrCommitmentArchived
	}

	start := c.StartDate
	if !startDate.IsZero() {
		start = dateutil.Normalize(startDate)
	}

	end := c.EndDate
	if clearEnd {
		end = nil
	} else if !endDate.IsZero() {
		e := dateutil.Normalize(endDate)
		end = &e
	}

	if end != nil && dateutil.BeforeDay(*end, start) {
		return shared.ErrDateOrder
	}

	c.StartDate = start
	c.EndDate = end
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// SetTarget updates the NUMERIC per-day target.
func (c *Commitment) SetTarget(target *float64) {
	c.TargetValue = target
	c.UpdatedAt = time.Now().UTC()
}

// IsCurrent reports whether the commitment appears in "current commitments"
// views. Archived commitments remain queryable for history only.
func (c *Commitment) IsCurrent() bool {
	return c.Status != StatusArchived
}

// CoversDate reports whether the calendar date falls inside
// [StartDate, EndDate-or-open].
func (c *Commitment) CoversDate(d time.Time) bool {
	if dateutil.BeforeDay(d, c.StartDate) {
		return false
	}
	if c.EndDate != nil && dateutil.AfterDay(d, *c.EndDate) {
		return false
	}
	return true
}

// IntersectsWindow reports whether the commitment interval overlaps the
// inclusive window. This is what lets a viewing-date picker show only the
// commitments that existed on that date.
func (c *Commitment) IntersectsWindow(window shared.DateRange) bool {
	return window.Intersects(c.StartDate, c.EndDate)
}
