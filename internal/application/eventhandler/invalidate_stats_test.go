package eventhandler

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/internal/infrastructure/messaging"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) InvalidateCommitment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func TestStatsCacheInvalidation(t *testing.T) {
	inv := &recordingInvalidator{}
	bus := messaging.NewInMemoryEventBus(messaging.Config{WorkerPoolSize: 1})
	require.NoError(t, NewStatsCacheInvalidation(inv, nil).Register(bus))

	require.NoError(t, bus.Publish(shared.NewLogUpsertedEvent("c-1", "2025-08-20", true, true)))
	require.NoError(t, bus.Publish(shared.NewCommitmentStatusChangedEvent("c-2", "u-1", "ACTIVE", "PAUSED")))
	require.NoError(t, bus.Publish(shared.NewCommitmentStatusChangedEvent("c-3", "u-1", "ACTIVE", "ARCHIVED")))
	require.NoError(t, bus.Publish(shared.NewCommitmentDatesChangedEvent("c-4", "u-1", "2025-08-01", "")))
	// Catalog events do not touch commitment stats.
	require.NoError(t, bus.Publish(shared.NewPracticeChangedEvent(shared.EventPracticeCreated, "t-1", "Run")))
	require.NoError(t, bus.Close())

	inv.mu.Lock()
	defer inv.mu.Unlock()
	assert.ElementsMatch(t, []string{"c-1", "c-2", "c-3", "c-4"}, inv.ids)
}
