package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/analytics"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

const tplID = "22222222-2222-2222-2222-222222222222"

type progressFixture struct {
	commitments *fakeCommitmentRepo
	logs        *fakeLogRepo
	cache       *fakeStatsCache
	handler     *GetProgressHandler
	cmt         *commitment.Commitment
	today       time.Time
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	f := &progressFixture{
		commitments: newFakeCommitmentRepo(),
		logs:        &fakeLogRepo{},
		cache:       newFakeStatsCache(),
		today:       dateutil.Date(2025, time.August, 20),
	}

	cmt, err := commitment.New("user-1", tplID, dateutil.Date(2025, time.August, 1), nil, nil)
	require.NoError(t, err)
	require.NoError(t, f.commitments.Create(context.Background(), cmt))
	f.cmt = cmt

	f.handler = NewGetProgressHandler(f.commitments, f.logs, f.cache)
	f.handler.now = func() time.Time { return f.today }
	return f
}

func (f *progressFixture) log(t *testing.T, day time.Time, completed bool) {
	t.Helper()
	_, _, err := f.logs.Upsert(context.Background(), f.cmt.ID, day, practicelog.Payload{Completed: completed})
	require.NoError(t, err)
}

func TestGetProgress(t *testing.T) {
	f := newProgressFixture(t)
	for i := 0; i < 10; i++ {
		f.log(t, dateutil.AddDays(f.today, -i), true)
	}

	res, err := f.handler.Handle(context.Background(), GetProgressQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
	})
	require.NoError(t, err)

	// Window defaults to [commitment start, today] = 20 days.
	assert.Equal(t, 20, res.Stats.TotalDays)
	assert.Equal(t, 10, res.Stats.CompletedDays)
	assert.Equal(t, 50, res.Stats.CompletionRate)
	assert.Equal(t, 10, res.Stats.CurrentStreak)
	assert.False(t, res.FromCache)
}

func TestGetProgress_CacheReadThrough(t *testing.T) {
	f := newProgressFixture(t)
	f.log(t, f.today, true)

	q := GetProgressQuery{UserID: "user-1", CommitmentID: f.cmt.ID}

	first, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, 1, f.cache.sets)
}

func TestGetProgress_CacheKeyedByWindowAndToday(t *testing.T) {
	f := newProgressFixture(t)
	q := GetProgressQuery{UserID: "user-1", CommitmentID: f.cmt.ID}

	_, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)

	// A different day recomputes rather than serving yesterday's entry.
	f.today = dateutil.NextDay(f.today)
	res, err := f.handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, res.FromCache)

	// A different explicit window misses too.
	res, err = f.handler.Handle(context.Background(), GetProgressQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
		From:         dateutil.Date(2025, time.August, 10),
	})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}

func TestGetProgress_NilCache(t *testing.T) {
	f := newProgressFixture(t)
	f.handler = NewGetProgressHandler(f.commitments, f.logs, nil)
	f.handler.now = func() time.Time { return f.today }

	_, err := f.handler.Handle(context.Background(), GetProgressQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
	})
	assert.NoError(t, err)
}

func TestGetProgress_InvertedWindowRejected(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.handler.Handle(context.Background(), GetProgressQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
		From:         dateutil.Date(2025, time.August, 15),
		To:           dateutil.Date(2025, time.August, 10),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidWindow)
}

func TestGetProgress_WrongUserForbidden(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.handler.Handle(context.Background(), GetProgressQuery{
		UserID:       "intruder",
		CommitmentID: f.cmt.ID,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGetHeatmap(t *testing.T) {
	f := newProgressFixture(t)
	f.log(t, f.today, true)

	h := NewGetHeatmapHandler(f.commitments, f.logs)
	h.now = func() time.Time { return f.today }

	res, err := h.Handle(context.Background(), GetHeatmapQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Grid.Weeks)

	found := false
	for _, week := range res.Grid.Weeks {
		for _, cell := range week {
			if cell.IsToday {
				found = true
				assert.True(t, cell.Completed)
				assert.Equal(t, analytics.IntensityCompleted, cell.Intensity())
			}
		}
	}
	assert.True(t, found)
}

func TestGetHeatmap_WindowTooLarge(t *testing.T) {
	f := newProgressFixture(t)
	h := NewGetHeatmapHandler(f.commitments, f.logs)
	h.now = func() time.Time { return f.today }

	_, err := h.Handle(context.Background(), GetHeatmapQuery{
		UserID:       "user-1",
		CommitmentID: f.cmt.ID,
		From:         dateutil.Date(2023, time.January, 1),
		To:           dateutil.Date(2025, time.January, 1),
	})
	assert.ErrorIs(t, err, shared.ErrWindowTooLarge)
}
