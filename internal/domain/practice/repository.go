// Package practice contains the template catalog: reusable definitions of
// practices a user can commit to.
package practice

import (
	"context"
)

// Filter narrows catalog listings.
type Filter struct {
	// Category restricts results to a single category tag when non-empty.
	Category string

	// CreatorID returns a user's custom practices instead of the catalog.
	CreatorID string

	// IncludeDisabled includes soft-disabled templates (admin views).
	IncludeDisabled bool
}

// Repository defines the interface for template persistence.
// This interface is implemented by the infrastructure layer.
// The domain layer has no knowledge of the actual storage mechanism.
type Repository interface {
	// Create persists a new template.
	// Returns shared.ErrPracticeExists on a duplicate ID.
	Create(ctx context.Context, t *Template) error

	// GetByID returns a template by ID.
	// Returns shared.ErrPracticeNotFound when absent.
	GetByID(ctx context.Context, id string) (*Template, error)

	// Update persists changes to an existing template.
	Update(ctx context.Context, t *Template) error

	// List returns catalog templates matching the filter, ordered by title.
	List(ctx context.Context, filter Filter) ([]*Template, error)

	// Delete removes a template outright. Callers must first verify no
	// commitments reference it; the catalog contract is soft-disable only
	// for referenced templates.
	Delete(ctx context.Context, id string) error
}
