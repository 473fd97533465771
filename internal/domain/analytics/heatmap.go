package analytics

import (
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// MaxGridDays bounds the heatmap span to keep rendering cost sane.
// Windows spanning more days are rejected with a too-large sentinel.
const MaxGridDays = 366

// DaysPerWeek is the length of every row in the grid.
const DaysPerWeek = 7

// Intensity is the 3-level display classification of a day cell. Callers
// rely on this mapping as a contract, not just styling.
type Intensity int

const (
	// IntensityNone - no completion; neutral cell.
	IntensityNone Intensity = iota

	// IntensityCompleted - completed without notes; base shade.
	IntensityCompleted

	// IntensityCompletedNotes - completed with notes; stronger shade.
	IntensityCompletedNotes
)

// IntensityFor classifies a cell from its completion and notes state.
func IntensityFor(completed, hasNotes bool) Intensity {
	switch {
	case !completed:
		return IntensityNone
	case hasNotes:
		return IntensityCompletedNotes
	default:
		return IntensityCompleted
	}
}

// Cell is one day in the heatmap grid.
type Cell struct {
	// Date is the cell's calendar day (midnight UTC).
	Date time.Time `json:"date"`

	// InRange is false for week-padding days outside the true window;
	// those render empty.
	InRange bool `json:"inRange"`

	// IsFuture marks days after today, rendered empty regardless of range.
	IsFuture bool `json:"isFuture"`

	Completed bool `json:"completed"`
	HasNotes  bool `json:"hasNotes"`
	IsToday   bool `json:"isToday"`
}

// Intensity returns the cell's display classification.
func (c Cell) Intensity() Intensity {
	return IntensityFor(c.Completed, c.HasNotes)
}

// Week is a row of exactly DaysPerWeek cells starting on Sunday.
type Week []Cell

// Grid is the week-aligned calendar matrix for a window. When TooLarge is
// set the weeks are omitted and the caller should fall back to a non-grid
// view.
type Grid struct {
	Weeks    []Week `json:"weeks,omitempty"`
	TooLarge bool   `json:"tooLarge,omitempty"`
}

// BuildGrid maps a date window onto Sunday-aligned weeks annotated with
// per-day completion state. Pure function of (logs, window, today); the
// window start snaps back to the most recent Sunday and the final week is
// padded forward, so every date in [window.Start, window.End] appears
// exactly once with InRange set and padding days carry InRange=false.
func BuildGrid(logs []*practicelog.Entry, window shared.DateRange, today time.Time) Grid {
	if dateutil.DaysBetween(window.Start, window.End) > MaxGridDays {
		return Grid{TooLarge: true}
	}

	today = dateutil.Normalize(today)

	type dayState struct {
		completed bool
		hasNotes  bool
	}
	byDay := make(map[string]dayState, len(logs))
	for _, e := range logs {
		byDay[dateutil.Key(e.Date)] = dayState{completed: e.Completed, hasNotes: e.HasNotes()}
	}

	weekStart := dateutil.StartOfWeek(window.Start)
	totalDays := dateutil.InclusiveDays(weekStart, window.End)
	if rem := totalDays % DaysPerWeek; rem != 0 {
		totalDays += DaysPerWeek - rem
	}

	weeks := make([]Week, 0, totalDays/DaysPerWeek)
	for offset := 0; offset < totalDays; offset += DaysPerWeek {
		week := make(Week, 0, DaysPerWeek)
		for i := 0; i < DaysPerWeek; i++ {
			d := dateutil.AddDays(weekStart, offset+i)
			state := byDay[dateutil.Key(d)]
			week = append(week, Cell{
				Date:      d,
				InRange:   window.Contains(d),
				IsFuture:  dateutil.AfterDay(d, today),
				Completed: state.completed,
				HasNotes:  state.hasNotes,
				IsToday:   dateutil.SameDay(d, today),
			})
		}
		weeks = append(weeks, week)
	}

	return Grid{Weeks: weeks}
}
