package practicelog

import (
	"context"
	"time"
)

// Repository defines the interface for ledger persistence.
// This interface is implemented by the infrastructure layer.
type Repository interface {
	// Upsert atomically creates or overwrites the entry for the given
	// (commitment, date). Implementations must serialize concurrent
	// writes for the same key through a storage-level uniqueness
	// constraint - last writer wins, two rows never appear. Returns the
	// stored entry and whether it was newly created.
	Upsert(ctx context.Context, commitmentID string, date time.Time, p Payload) (*Entry, bool, error)

	// GetForDate returns the entry for an exact calendar date.
	// Returns shared.ErrLogNotFound when no entry exists.
	GetForDate(ctx context.Context, commitmentID string, date time.Time) (*Entry, error)

	// List returns a commitment's entries ordered by date ascending.
	// Zero bounds are open: List(ctx, id, time.Time{}, time.Time{})
	// returns the full ledger for the commitment.
	List(ctx context.Context, commitmentID string, from, to time.Time) ([]*Entry, error)
}
