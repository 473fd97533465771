package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

func newCommitment(t *testing.T, start time.Time, end *time.Time) *commitment.Commitment {
	t.Helper()
	c, err := commitment.New("user-1", "00000000-0000-0000-0000-000000000001", start, end, nil)
	require.NoError(t, err)
	return c
}

func entry(c *commitment.Commitment, date time.Time, completed bool, notes string) *practicelog.Entry {
	n := notes
	p := practicelog.Payload{Completed: completed}
	if notes != "" {
		p.Notes = &n
	}
	return practicelog.New(c.ID, date, p)
}

func window(t *testing.T, start, end time.Time) shared.DateRange {
	t.Helper()
	w, err := shared.NewDateRange(start, end)
	require.NoError(t, err)
	return w
}

func TestComputeStats_NumericScenario(t *testing.T) {
	// Commitment starts 2025-01-01; completed on the 1st and 3rd,
	// explicitly incomplete on the 2nd.
	start := dateutil.Date(2025, time.January, 1)
	today := dateutil.Date(2025, time.January, 3)
	c := newCommitment(t, start, nil)

	ten, five := 10.0, 5.0
	logs := []*practicelog.Entry{
		practicelog.New(c.ID, start, practicelog.Payload{Completed: true, Value: &ten}),
		entry(c, dateutil.Date(2025, time.January, 2), false, ""),
		practicelog.New(c.ID, today, practicelog.Payload{Completed: true, Value: &five}),
	}

	stats := ComputeStats(c, logs, window(t, start, today), today)

	assert.Equal(t, 3, stats.TotalDays)
	assert.Equal(t, 2, stats.CompletedDays)
	assert.Equal(t, 67, stats.CompletionRate)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)
}

func TestComputeStats_InsertionOrderInvariant(t *testing.T) {
	start := dateutil.Date(2025, time.March, 1)
	today := dateutil.Date(2025, time.March, 20)
	c := newCommitment(t, start, nil)

	var logs []*practicelog.Entry
	for i := 0; i < 20; i++ {
		logs = append(logs, entry(c, dateutil.AddDays(start, i), i%3 != 0, ""))
	}

	want := ComputeStats(c, logs, window(t, start, today), today)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]*practicelog.Entry, len(logs))
		copy(shuffled, logs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := ComputeStats(c, shuffled, window(t, start, today), today)
		assert.Equal(t, want, got)
	}
}

func TestComputeStats_CurrentStreakResetsAfterGap(t *testing.T) {
	// Completed on D-3 and D-2, nothing on D-1 and D.
	start := dateutil.Date(2025, time.May, 1)
	d := dateutil.AddDays(start, 10)
	c := newCommitment(t, start, nil)

	logs := []*practicelog.Entry{
		entry(c, dateutil.AddDays(d, -3), true, ""),
		entry(c, dateutil.AddDays(d, -2), true, ""),
	}
	w := window(t, start, d)

	assert.Equal(t, 0, ComputeStats(c, logs, w, d).CurrentStreak)
	assert.Equal(t, 2, ComputeStats(c, logs, w, dateutil.AddDays(d, -2)).CurrentStreak)
}

func TestComputeStats_GapBreaksLikeExplicitIncomplete(t *testing.T) {
	start := dateutil.Date(2025, time.May, 1)
	today := dateutil.AddDays(start, 6)
	c := newCommitment(t, start, nil)

	// Seven days: done, done, gap, done, done, done, done.
	logs := []*practicelog.Entry{
		entry(c, start, true, ""),
		entry(c, dateutil.AddDays(start, 1), true, ""),
		entry(c, dateutil.AddDays(start, 3), true, ""),
		entry(c, dateutil.AddDays(start, 4), true, ""),
		entry(c, dateutil.AddDays(start, 5), true, ""),
		entry(c, dateutil.AddDays(start, 6), true, ""),
	}

	stats := ComputeStats(c, logs, window(t, start, today), today)

	assert.Equal(t, 4, stats.CurrentStreak)
	assert.Equal(t, 4, stats.LongestStreak)
	assert.Equal(t, 6, stats.CompletedDays)
}

func TestComputeStats_LongestAtLeastCurrent(t *testing.T) {
	start := dateutil.Date(2025, time.February, 1)
	today := dateutil.AddDays(start, 27)
	c := newCommitment(t, start, nil)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		var logs []*practicelog.Entry
		for i := 0; i < 28; i++ {
			if rng.Intn(2) == 0 {
				continue // gap day
			}
			logs = append(logs, entry(c, dateutil.AddDays(start, i), rng.Intn(3) != 0, ""))
		}

		stats := ComputeStats(c, logs, window(t, start, today), today)
		assert.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak)
	}
}

func TestComputeStats_WindowClipping(t *testing.T) {
	// Commitment covers Jan 10 - Jan 20; the requested window is wider
	// and today is Jan 15, so the effective window is Jan 10 - Jan 15.
	start := dateutil.Date(2025, time.January, 10)
	end := dateutil.Date(2025, time.January, 20)
	today := dateutil.Date(2025, time.January, 15)
	c := newCommitment(t, start, &end)

	var logs []*practicelog.Entry
	for i := 0; i < 11; i++ {
		logs = append(logs, entry(c, dateutil.AddDays(start, i), true, ""))
	}

	stats := ComputeStats(c, logs, window(t, dateutil.Date(2025, time.January, 1), dateutil.Date(2025, time.January, 31)), today)

	assert.Equal(t, 6, stats.TotalDays)
	assert.Equal(t, 6, stats.CompletedDays)
	assert.Equal(t, 100, stats.CompletionRate)
	assert.Equal(t, 6, stats.CurrentStreak)
}

func TestComputeStats_EmptyWindowYieldsZeroes(t *testing.T) {
	start := dateutil.Date(2025, time.June, 1)
	c := newCommitment(t, start, nil)

	// Today precedes the commitment start; nothing to count.
	stats := ComputeStats(c, nil, window(t, start, dateutil.AddDays(start, 10)), dateutil.Date(2025, time.May, 20))

	assert.Equal(t, 0, stats.TotalDays)
	assert.Equal(t, 0, stats.CompletedDays)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
	assert.Equal(t, TierBeginner, stats.Tier)
}

func TestComputeMomentum(t *testing.T) {
	today := dateutil.Date(2025, time.April, 20)
	c := newCommitment(t, dateutil.Date(2025, time.April, 1), nil)

	// makeLogs fills each bucket with `logged` entries, the first `done` of
	// them completed. Rates are relative to logged days, not the bucket size.
	makeLogs := func(recentDone, recentLogged, previousDone, previousLogged int) []*practicelog.Entry {
		var logs []*practicelog.Entry
		for i := 0; i < recentLogged; i++ {
			logs = append(logs, entry(c, dateutil.AddDays(today, -i), i < recentDone, ""))
		}
		for i := 0; i < previousLogged; i++ {
			logs = append(logs, entry(c, dateutil.AddDays(today, -7-i), i < previousDone, ""))
		}
		return logs
	}

	up := ComputeMomentum(makeLogs(6, 7, 2, 7), today)
	assert.Equal(t, TrendUp, up.Trend)
	assert.Equal(t, 57, up.Percentage) // 6/7 - 2/7 = 57.14pp

	down := ComputeMomentum(makeLogs(1, 7, 5, 7), today)
	assert.Equal(t, TrendDown, down.Trend)
	assert.Equal(t, 57, down.Percentage)

	stable := ComputeMomentum(makeLogs(3, 7, 3, 7), today)
	assert.Equal(t, TrendStable, stable.Trend)
	assert.Equal(t, 0, stable.Percentage)

	empty := ComputeMomentum(nil, today)
	assert.Equal(t, TrendStable, empty.Trend)
}

func TestComputeMomentum_SparseLoggingRatesPerLoggedDay(t *testing.T) {
	today := dateutil.Date(2025, time.April, 20)
	c := newCommitment(t, dateutil.Date(2025, time.April, 1), nil)

	// Recent bucket: 2 logged days, both completed (100%). Previous bucket:
	// 7 logged days, 6 completed (~85.7%). Unlogged days do not dilute the
	// recent rate, so momentum reads up.
	var logs []*practicelog.Entry
	for i := 0; i < 2; i++ {
		logs = append(logs, entry(c, dateutil.AddDays(today, -i), true, ""))
	}
	for i := 0; i < 7; i++ {
		logs = append(logs, entry(c, dateutil.AddDays(today, -7-i), i < 6, ""))
	}

	m := ComputeMomentum(logs, today)
	assert.Equal(t, TrendUp, m.Trend)
	assert.Equal(t, 14, m.Percentage)

	// A bucket with no entries at all rates 0, it is not skipped.
	onlyPrevious := logs[2:]
	m = ComputeMomentum(onlyPrevious, today)
	assert.Equal(t, TrendDown, m.Trend)
	assert.Equal(t, 86, m.Percentage)
}

func TestComputeMomentum_BucketMembership(t *testing.T) {
	today := dateutil.Date(2025, time.April, 20)
	c := newCommitment(t, dateutil.Date(2025, time.January, 1), nil)

	// The incomplete entry counts toward the recent denominator but not the
	// numerator; the others fall outside both buckets entirely.
	logs := []*practicelog.Entry{
		entry(c, today, false, ""),
		entry(c, dateutil.AddDays(today, -20), true, ""),
		entry(c, dateutil.AddDays(today, 3), true, ""),
	}

	m := ComputeMomentum(logs, today)
	assert.Equal(t, TrendStable, m.Trend)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name    string
		rate    int
		longest int
		want    Tier
	}{
		{"elite", 90, 30, TierElite},
		{"elite high", 100, 45, TierElite},
		{"champion rate too low for elite", 89, 40, TierChampion},
		{"champion streak too short for elite", 95, 29, TierChampion},
		{"rising", 60, 7, TierRising},
		{"beginner low rate", 59, 40, TierBeginner},
		{"beginner short streak", 100, 6, TierBeginner},
		{"beginner zero", 0, 0, TierBeginner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.rate, tt.longest))
		})
	}
}
