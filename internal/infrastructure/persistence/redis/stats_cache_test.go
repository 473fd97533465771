package redis

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/analytics"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/logger"
)

func newTestStatsCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCacheFromClient(client)
	log := logger.New(logger.Options{Output: io.Discard})
	return NewStatsCache(cache, log), srv
}

func testWindow(t *testing.T, start, end string) shared.DateRange {
	t.Helper()
	s, err := time.Parse("2006-01-02", start)
	require.NoError(t, err)
	e, err := time.Parse("2006-01-02", end)
	require.NoError(t, err)
	r, err := shared.NewDateRange(s, e)
	require.NoError(t, err)
	return r
}

func TestStatsCache_SetThenGet(t *testing.T) {
	sc, _ := newTestStatsCache(t)
	ctx := context.Background()

	window := testWindow(t, "2025-08-01", "2025-08-20")
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	stats := analytics.ProgressStats{
		TotalDays:      20,
		CompletedDays:  15,
		CompletionRate: 75,
		CurrentStreak:  4,
		LongestStreak:  9,
		Momentum:       analytics.Momentum{Trend: analytics.TrendUp, Percentage: 14},
		Tier:           analytics.TierRising,
	}

	got, ok := sc.Get(ctx, "commitment-1", window, today)
	assert.False(t, ok)
	assert.Nil(t, got)

	sc.Set(ctx, "commitment-1", window, today, stats)

	got, ok = sc.Get(ctx, "commitment-1", window, today)
	require.True(t, ok)
	assert.Equal(t, stats, *got)
}

func TestStatsCache_KeyIncludesWindowAndToday(t *testing.T) {
	sc, _ := newTestStatsCache(t)
	ctx := context.Background()

	window := testWindow(t, "2025-08-01", "2025-08-20")
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	sc.Set(ctx, "commitment-1", window, today, analytics.ProgressStats{TotalDays: 20})

	// Different window misses.
	other := testWindow(t, "2025-08-01", "2025-08-19")
	_, ok := sc.Get(ctx, "commitment-1", other, today)
	assert.False(t, ok)

	// Same window on the next day misses, so yesterday's entry can never
	// answer a query after midnight.
	_, ok = sc.Get(ctx, "commitment-1", window, today.AddDate(0, 0, 1))
	assert.False(t, ok)

	// Different commitment misses.
	_, ok = sc.Get(ctx, "commitment-2", window, today)
	assert.False(t, ok)
}

func TestStatsCache_InvalidateCommitment(t *testing.T) {
	sc, _ := newTestStatsCache(t)
	ctx := context.Background()

	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	w1 := testWindow(t, "2025-08-01", "2025-08-20")
	w2 := testWindow(t, "2025-07-01", "2025-08-20")

	sc.Set(ctx, "commitment-1", w1, today, analytics.ProgressStats{TotalDays: 20})
	sc.Set(ctx, "commitment-1", w2, today, analytics.ProgressStats{TotalDays: 51})
	sc.Set(ctx, "commitment-2", w1, today, analytics.ProgressStats{TotalDays: 20})

	require.NoError(t, sc.InvalidateCommitment(ctx, "commitment-1"))

	_, ok := sc.Get(ctx, "commitment-1", w1, today)
	assert.False(t, ok)
	_, ok = sc.Get(ctx, "commitment-1", w2, today)
	assert.False(t, ok)

	// Other commitments keep their entries.
	_, ok = sc.Get(ctx, "commitment-2", w1, today)
	assert.True(t, ok)
}

func TestStatsCache_InvalidateUnknownCommitmentIsNoop(t *testing.T) {
	sc, _ := newTestStatsCache(t)
	require.NoError(t, sc.InvalidateCommitment(context.Background(), "missing"))
}

func TestStatsCache_EntriesExpire(t *testing.T) {
	sc, srv := newTestStatsCache(t)
	ctx := context.Background()

	window := testWindow(t, "2025-08-01", "2025-08-20")
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	sc.Set(ctx, "commitment-1", window, today, analytics.ProgressStats{TotalDays: 20})

	srv.FastForward(TTLStats + time.Second)

	_, ok := sc.Get(ctx, "commitment-1", window, today)
	assert.False(t, ok)
}

func TestStatsCache_CorruptEntryDegradesToMiss(t *testing.T) {
	sc, srv := newTestStatsCache(t)
	ctx := context.Background()

	window := testWindow(t, "2025-08-01", "2025-08-20")
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, srv.Set(statsKey("commitment-1", window, today), "not-json"))

	got, ok := sc.Get(ctx, "commitment-1", window, today)
	assert.False(t, ok)
	assert.Nil(t, got)
}
