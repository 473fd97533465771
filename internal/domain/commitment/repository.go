package commitment

import (
	"context"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// ListFilter narrows commitment listings for a user.
type ListFilter struct {
	// Window keeps only commitments whose interval intersects it, when set.
	Window *shared.DateRange

	// IncludeArchived includes ARCHIVED commitments (historical views).
	IncludeArchived bool

	// Page applies limit/offset pagination when set; nil returns every
	// matching row.
	Page *shared.Pagination
}

// Repository defines the interface for commitment persistence.
// This interface is implemented by the infrastructure layer.
type Repository interface {
	// Create persists a new commitment. The storage layer enforces the
	// one-active-commitment-per-(user, template) invariant and returns
	// shared.ErrCommitmentExists when it is violated.
	Create(ctx context.Context, c *Commitment) error

	// GetByID returns a commitment by ID.
	// Returns shared.ErrCommitmentNotFound when absent.
	GetByID(ctx context.Context, id string) (*Commitment, error)

	// Update persists changes to an existing commitment.
	Update(ctx context.Context, c *Commitment) error

	// ListForUser returns a user's commitments matching the filter,
	// ordered by creation time ascending.
	ListForUser(ctx context.Context, userID string, filter ListFilter) ([]*Commitment, error)

	// CountByTemplate returns how many commitments (any status) reference
	// a template. Used to block catalog hard-deletes.
	CountByTemplate(ctx context.Context, templateID string) (int, error)
}
