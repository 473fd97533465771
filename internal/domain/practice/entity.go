// Package practice contains the template catalog: reusable definitions of
// practices a user can commit to. Templates are read-mostly; the interesting
// lifecycle lives in the commitment package.
package practice

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// TRACKING TYPE
// ═══════════════════════════════════════════════════════════════════════════

// TrackingType describes how a day is recorded for a practice.
type TrackingType string

const (
	// TrackingBoolean - done / not done.
	TrackingBoolean TrackingType = "BOOLEAN"

	// TrackingNumeric - a quantity plus an optional target value.
	TrackingNumeric TrackingType = "NUMERIC"

	// TrackingText - free-form journal entry.
	TrackingText TrackingType = "TEXT"
)

// IsValid checks if the tracking type is one of the known kinds.
func (t TrackingType) IsValid() bool {
	switch t {
	case TrackingBoolean, TrackingNumeric, TrackingText:
		return true
	default:
		return false
	}
}

// RequiresValue reports whether log entries must carry a numeric value.
func (t TrackingType) RequiresValue() bool {
	return t == TrackingNumeric
}

// String returns the string representation.
func (t TrackingType) String() string {
	return string(t)
}

// ParseTrackingType parses a string into a TrackingType.
func ParseTrackingType(s string) (TrackingType, error) {
	t := TrackingType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.ErrInvalidTracking
	}
	return t, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TEMPLATE ENTITY
// ═══════════════════════════════════════════════════════════════════════════

// Template is a reusable practice definition. Curated templates have an
// empty CreatorID; user-created custom practices carry their owner's ID and
// are not listed in the public catalog.
type Template struct {
	// ID is the internal UUID.
	ID string

	// Title is the display name of the practice.
	Title string

	// Description is optional free text.
	Description string

	// Category is an opaque tag; presentation owns any icon mapping.
	Category string

	// Tracking determines how daily entries are validated.
	Tracking TrackingType

	// IsTemplate is true for curated catalog entries.
	IsTemplate bool

	// CreatorID is set for custom practices owned by a single user.
	CreatorID string

	// Disabled hides the template from the catalog. Templates referenced
	// by commitments are never deleted, only disabled.
	Disabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a validated template. A non-empty creatorID makes it a custom
// practice rather than a catalog template.
func New(title, description, category string, tracking TrackingType, creatorID string) (*Template, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("practice", "New", shared.ErrEmptyValue, "title is required")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, shared.NewDomainError("practice", "New", shared.ErrEmptyValue, "category is required")
	}
	if !tracking.IsValid() {
		return nil, shared.ErrInvalidTracking
	}

	now := time.Now().UTC()
	return &Template{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Category:    category,
		Tracking:    tracking,
		IsTemplate:  creatorID == "",
		CreatorID:   creatorID,
		Disabled:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update replaces the editable fields. Tracking type is immutable once
// created: historical logs were validated against it.
func (t *Template) Update(title, description, category string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("practice", "Update", shared.ErrEmptyValue, "title is required")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return shared.NewDomainError("practice", "Update", shared.ErrEmptyValue, "category is required")
	}

	t.Title = title
	t.Description = strings.TrimSpace(description)
	t.Category = category
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Disable soft-disables the template.
func (t *Template) Disable() {
	t.Disabled = true
	t.UpdatedAt = time.Now().UTC()
}

// Enable re-enables a disabled template.
func (t *Template) Enable() {
	t.Disabled = false
	t.UpdatedAt = time.Now().UTC()
}

// Joinable reports whether new commitments may reference the template.
func (t *Template) Joinable() bool {
	return !t.Disabled
}

// OwnedBy reports whether the template is a custom practice of the user.
func (t *Template) OwnedBy(userID string) bool {
	return t.CreatorID != "" && t.CreatorID == userID
}
