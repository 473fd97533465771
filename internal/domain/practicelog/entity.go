// Package practicelog is the log ledger: one entry per (commitment, calendar
// date), created or overwritten by upsert and never duplicated. Entries are
// plain facts; every derived number lives in the analytics package.
package practicelog

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// Entry is one day's recorded outcome for a commitment.
type Entry struct {
	// ID is the internal UUID.
	ID string

	// CommitmentID references the owning commitment.
	CommitmentID string

	// Date is the calendar day (midnight UTC). Together with CommitmentID
	// it forms the ledger's natural key.
	Date time.Time

	// Completed records whether the practice was done that day.
	Completed bool

	// Value is the recorded quantity; required for NUMERIC practices.
	Value *float64

	// Notes is free text; TEXT practices expect it but the ledger does not
	// enforce that beyond the UI layer.
	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payload carries the fields of an upsert. Completed is always written;
// Value and Notes are partial - a nil pointer leaves the stored field
// unchanged on update.
type Payload struct {
	Completed bool
	Value     *float64
	Notes     *string
}

// Validate checks the payload against the owning practice's tracking type.
// NUMERIC practices require a finite value; validation runs before any
// ledger write so a rejected payload never leaves a partial row.
func (p Payload) Validate(tracking practice.TrackingType) error {
	if tracking.RequiresValue() {
		if p.Value == nil {
			return shared.ErrMissingNumericValue
		}
		if math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0) {
			return shared.ErrMissingNumericValue
		}
	}
	return nil
}

// New creates a fresh entry from a payload.
func New(commitmentID string, date time.Time, p Payload) *Entry {
	now := time.Now().UTC()
	e := &Entry{
		ID:           uuid.New().String(),
		CommitmentID: commitmentID,
		Date:         dateutil.Normalize(date),
		Completed:    p.Completed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Value != nil {
		v := *p.Value
		e.Value = &v
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	return e
}

// Apply overwrites an existing entry with a payload. Completed is always
// taken from the payload; Value and Notes only when present.
func (e *Entry) Apply(p Payload) {
	e.Completed = p.Completed
	if p.Value != nil {
		v := *p.Value
		e.Value = &v
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.UpdatedAt = time.Now().UTC()
}

// HasNotes reports whether the entry carries a note. The heatmap intensity
// contract distinguishes completion with and without notes.
func (e *Entry) HasNotes() bool {
	return e.Notes != ""
}
