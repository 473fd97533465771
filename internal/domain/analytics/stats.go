// Package analytics derives progress statistics from a commitment's log
// entries: completion rate, streaks, momentum, achievement tier, and the
// calendar heatmap grid. Everything here is a pure function of
// (commitment, logs, window, today) - no storage, no side effects, safe to
// run repeatedly and concurrently against the same log snapshot.
package analytics

import (
	"math"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// MOMENTUM
// ═══════════════════════════════════════════════════════════════════════════

// Trend is the direction of recent momentum.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Momentum compares completion density of the last 7 days against the
// preceding 7 days (days 7-13 before today).
type Momentum struct {
	Trend Trend `json:"trend"`

	// Percentage is the rounded absolute difference in percentage points,
	// 0 when the trend is stable.
	Percentage int `json:"percentage"`
}

// momentumBucketDays is the size of each comparison bucket.
const momentumBucketDays = 7

// momentumThreshold is the percentage-point difference below which the
// trend reads as stable.
const momentumThreshold = 5.0

// ComputeMomentum derives the 7-vs-7-day trend from a log set. Each bucket's
// rate is completed days over the days actually logged in that bucket; a
// bucket with no log entries rates 0.
func ComputeMomentum(logs []*practicelog.Entry, today time.Time) Momentum {
	today = dateutil.Normalize(today)

	var recentLogged, recentDone, previousLogged, previousDone int
	for _, e := range logs {
		diff := dateutil.DaysBetween(e.Date, today)
		switch {
		case diff >= 0 && diff < momentumBucketDays:
			recentLogged++
			if e.Completed {
				recentDone++
			}
		case diff >= momentumBucketDays && diff < 2*momentumBucketDays:
			previousLogged++
			if e.Completed {
				previousDone++
			}
		}
	}

	diff := bucketRate(recentDone, recentLogged) - bucketRate(previousDone, previousLogged)

	if math.Abs(diff) < momentumThreshold {
		return Momentum{Trend: TrendStable, Percentage: 0}
	}
	if diff > 0 {
		return Momentum{Trend: TrendUp, Percentage: int(math.Round(diff))}
	}
	return Momentum{Trend: TrendDown, Percentage: int(math.Round(-diff))}
}

func bucketRate(done, logged int) float64 {
	if logged == 0 {
		return 0
	}
	return float64(done) / float64(logged) * 100
}

// ═══════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT TIER
// ═══════════════════════════════════════════════════════════════════════════

// Tier is an ordered achievement classification. Evaluated top-down,
// first match wins.
type Tier string

const (
	TierElite    Tier = "Elite"
	TierChampion Tier = "Champion"
	TierRising   Tier = "Rising"
	TierBeginner Tier = "Beginner"
)

// TierFor classifies (completionRate, longestStreak) into a tier.
func TierFor(completionRate, longestStreak int) Tier {
	switch {
	case completionRate >= 90 && longestStreak >= 30:
		return TierElite
	case completionRate >= 75 && longestStreak >= 14:
		return TierChampion
	case completionRate >= 60 && longestStreak >= 7:
		return TierRising
	default:
		return TierBeginner
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// PROGRESS STATS
// ═══════════════════════════════════════════════════════════════════════════

// ProgressStats is the full derived view of a commitment over a window.
type ProgressStats struct {
	// TotalDays is the number of calendar days in the effective window.
	TotalDays int `json:"totalDays"`

	// CompletedDays counts days in the effective window with a completed log.
	CompletedDays int `json:"completedDays"`

	// CompletionRate is round(100 * CompletedDays / TotalDays), 0 when
	// TotalDays is 0.
	CompletionRate int `json:"completionRate"`

	// CurrentStreak counts consecutive completed days ending at the
	// effective window end. A missing log breaks the streak exactly like
	// an explicit incomplete one.
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak is the longest completed run inside the effective window.
	LongestStreak int `json:"longestStreak"`

	Momentum Momentum `json:"momentum"`

	Tier Tier `json:"tier"`
}

// ComputeStats derives ProgressStats for a commitment. The requested window
// is clipped to [commitment start, min(commitment end, window end, today)];
// a window that ends before it starts yields zeroed counters, never an error.
// The result is invariant to the order of the logs slice.
func ComputeStats(c *commitment.Commitment, logs []*practicelog.Entry, window shared.DateRange, today time.Time) ProgressStats {
	today = dateutil.Normalize(today)
	momentum := ComputeMomentum(logs, today)

	start := dateutil.Max(window.Start, c.StartDate)
	end := dateutil.Min(window.End, today)
	if c.EndDate != nil {
		end = dateutil.Min(end, *c.EndDate)
	}

	if dateutil.AfterDay(start, end) {
		return ProgressStats{Momentum: momentum, Tier: TierBeginner}
	}

	completedByDay := make(map[string]bool, len(logs))
	for _, e := range logs {
		if e.Completed {
			completedByDay[dateutil.Key(e.Date)] = true
		}
	}

	totalDays := dateutil.InclusiveDays(start, end)

	completedDays := 0
	longest, run := 0, 0
	for d := start; !dateutil.AfterDay(d, end); d = dateutil.NextDay(d) {
		if completedByDay[dateutil.Key(d)] {
			completedDays++
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	current := 0
	for d := end; !dateutil.BeforeDay(d, start); d = dateutil.PrevDay(d) {
		if !completedByDay[dateutil.Key(d)] {
			break
		}
		current++
	}

	rate := 0
	if totalDays > 0 {
		rate = int(math.Round(float64(completedDays) / float64(totalDays) * 100))
	}

	return ProgressStats{
		TotalDays:      totalDays,
		CompletedDays:  completedDays,
		CompletionRate: rate,
		CurrentStreak:  current,
		LongestStreak:  longest,
		Momentum:       momentum,
		Tier:           TierFor(rate, longest),
	}
}
