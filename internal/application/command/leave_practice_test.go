package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

func (f *commandFixture) seedCommitment(t *testing.T, userID string, tracking practice.TrackingType, start time.Time) *commitment.Commitment {
	t.Helper()
	tpl := f.seedTemplate(t, tracking, "")
	cmt, err := commitment.New(userID, tpl.ID, start, nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.commitments.Create(context.Background(), cmt))
	return cmt
}

func leaveHandlerAt(f *commandFixture, today time.Time) *LeavePracticeHandler {
	h := NewLeavePracticeHandler(f.commitments, f.logs, f.bus)
	h.now = func() time.Time { return today }
	return h
}

func TestLeavePractice_CapsEndToYesterdayWithoutTodayLog(t *testing.T) {
	f := newFixture()
	today := dateutil.Date(2025, time.August, 20)
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))

	res, err := leaveHandlerAt(f, today).Handle(context.Background(), LeavePracticeCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, commitment.StatusArchived, res.Commitment.Status)
	require.NotNil(t, res.Commitment.EndDate)
	assert.Equal(t, dateutil.Date(2025, time.August, 19), *res.Commitment.EndDate)
}

func TestLeavePractice_KeepsTodayWhenLogged(t *testing.T) {
	f := newFixture()
	today := dateutil.Date(2025, time.August, 20)
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))

	_, _, err := f.logs.Upsert(context.Background(), cmt.ID, today, practicelog.Payload{Completed: true})
	require.NoError(t, err)

	res, err := leaveHandlerAt(f, today).Handle(context.Background(), LeavePracticeCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Commitment.EndDate)
	assert.Equal(t, today, *res.Commitment.EndDate)
}

func TestLeavePractice_SameDayJoinClampsToStart(t *testing.T) {
	// Joining and leaving on the same day without a log would cap to
	// yesterday; the end clamps to the start date instead.
	f := newFixture()
	today := dateutil.Date(2025, time.August, 20)
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, today)

	res, err := leaveHandlerAt(f, today).Handle(context.Background(), LeavePracticeCommand{
		UserID:       "user-1",
		CommitmentID: cmt.ID,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Commitment.EndDate)
	assert.Equal(t, today, *res.Commitment.EndDate)
}

func TestLeavePractice_Idempotent(t *testing.T) {
	f := newFixture()
	today := dateutil.Date(2025, time.August, 20)
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))
	h := leaveHandlerAt(f, today)

	cmd := LeavePracticeCommand{UserID: "user-1", CommitmentID: cmt.ID}
	first, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.False(t, first.AlreadyArchived)

	second, err := h.Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, second.AlreadyArchived)
	assert.Equal(t, *first.Commitment.EndDate, *second.Commitment.EndDate)

	// Only the first call transitions, so exactly one archive event.
	assert.Len(t, f.bus.published(shared.EventCommitmentArchived), 1)
}

func TestLeavePractice_WrongUserForbidden(t *testing.T) {
	f := newFixture()
	cmt := f.seedCommitment(t, "user-1", practice.TrackingBoolean, dateutil.Date(2025, time.August, 1))

	_, err := leaveHandlerAt(f, dateutil.Date(2025, time.August, 20)).Handle(context.Background(), LeavePracticeCommand{
		UserID:       "intruder",
		CommitmentID: cmt.ID,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
