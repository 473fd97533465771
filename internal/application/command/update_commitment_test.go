package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

func TestUpdateCommitment_Status(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	paused := commitment.StatusPaused
	res, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		Status:       &paused,
	})
	require.NoError(t, err)
	assert.Equal(t, commitment.StatusPaused, res.Commitment.Status)
	assert.Len(t, f.bus.published(shared.EventCommitmentStatusChanged), 1)
}

func TestUpdateCommitment_ArchiveViaStatusIsTerminal(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	archived := commitment.StatusArchived
	_, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		Status:       &archived,
	})
	require.NoError(t, err)

	active := commitment.StatusActive
	_, err = h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		Status:       &active,
	})
	assert.ErrorIs(t, err, shared.ErrCommitmentArchived)
}

func TestUpdateCommitment_Dates(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	res, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		EndDate:      dateutil.Date(2025, time.September, 30),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Commitment.EndDate)
	assert.Equal(t, dateutil.Date(2025, time.September, 30), *res.Commitment.EndDate)
	assert.Equal(t, dateutil.Date(2025, time.August, 1), res.Commitment.StartDate)
	assert.Len(t, f.bus.published(shared.EventCommitmentDatesChanged), 1)

	// Inverted window is rejected and leaves the stored row untouched.
	_, err = h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		StartDate:    dateutil.Date(2025, time.October, 1),
	})
	assert.ErrorIs(t, err, shared.ErrDateOrder)

	stored, err := f.commitments.GetByID(context.Background(), cmt.ID)
	require.NoError(t, err)
	assert.Equal(t, dateutil.Date(2025, time.August, 1), stored.StartDate)
}

func TestUpdateCommitment_ClearEndAndTarget(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingNumeric, dateutil.Date(2025, time.August, 1))
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	target := 20.0
	_, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		EndDate:      dateutil.Date(2025, time.September, 1),
		TargetValue:  &target,
	})
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
		ClearEndDate: true,
		ClearTarget:  true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Commitment.EndDate)
	assert.Nil(t, res.Commitment.TargetValue)
}

func TestUpdateCommitment_Validation(t *testing.T) {
	f := newFixture()
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	_, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: "c-1",
		EndDate:      dateutil.Date(2025, time.September, 1),
		ClearEndDate: true,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	bogus := commitment.Status("GONE")
	_, err = h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "user-1",
		CommitmentID: "c-1",
		Status:       &bogus,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestUpdateCommitment_WrongUserForbidden(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))
	h := NewUpdateCommitmentHandler(f.commitments, f.bus)

	paused := commitment.StatusPaused
	_, err := h.Handle(context.Background(), UpdateCommitmentCommand{
		UserID:       "intruder",
		CommitmentID: cmt.ID,
		Status:       &paused,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
