// Package dateutil provides calendar-date utilities for Praxis Practice Hub.
// All practice logs and commitment boundaries are keyed by calendar date, not
// by timestamp: values are normalized to midnight UTC and every comparison is
// performed at day granularity. Mixing wall-clock time into these operations
// is the classic source of off-by-one streak and heatmap bugs, so anything
// that touches a log date goes through this package.
// No external dependencies - uses only standard library.
package dateutil

import (
	"fmt"
	"time"
)

// ISODate is the wire format for calendar dates (YYYY-MM-DD).
const ISODate = "2006-01-02"

// Normalize truncates a time to its calendar date at midnight UTC.
// The year/month/day are taken from the value's own location, so a
// timestamp of 2025-01-02 23:30 +05:00 normalizes to 2025-01-02.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date creates a normalized calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Parse parses a YYYY-MM-DD string into a normalized calendar date.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(ISODate, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("dateutil: invalid date %q: %w", value, err)
	}
	return t, nil
}

// Format formats a time as a YYYY-MM-DD string.
func Format(t time.Time) string {
	return Normalize(t).Format(ISODate)
}

// Today returns the current calendar date in the given location,
// normalized to midnight UTC.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(time.Now().In(loc))
}

// AddDays returns the date n days after d (n may be negative).
func AddDays(d time.Time, n int) time.Time {
	return Normalize(d).AddDate(0, 0, n)
}

// NextDay returns the calendar day after d.
func NextDay(d time.Time) time.Time {
	return AddDays(d, 1)
}

// PrevDay returns the calendar day before d.
func PrevDay(d time.Time) time.Time {
	return AddDays(d, -1)
}

// SameDay reports whether two times fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// BeforeDay reports whether a falls on an earlier calendar date than b.
func BeforeDay(a, b time.Time) bool {
	return Normalize(a).Before(Normalize(b))
}

// AfterDay reports whether a falls on a later calendar date than b.
func AfterDay(a, b time.Time) bool {
	return Normalize(a).After(Normalize(b))
}

// DaysBetween returns the number of calendar days from a to b.
// Positive when b is after a, negative when before. Safe against DST
// because normalized dates live in UTC where every day is 24 hours.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// InclusiveDays returns the number of days in the inclusive range [from, to].
// Returns 0 when to is before from.
func InclusiveDays(from, to time.Time) int {
	d := DaysBetween(from, to)
	if d < 0 {
		return 0
	}
	return d + 1
}

// StartOfWeek snaps a date back to the most recent Sunday (or the date
// itself when it already is a Sunday). Heatmap grids are Sunday-aligned.
func StartOfWeek(d time.Time) time.Time {
	n := Normalize(d)
	return AddDays(n, -int(n.Weekday()))
}

// Min returns the earlier of two calendar dates.
func Min(a, b time.Time) time.Time {
	if BeforeDay(b, a) {
		return Normalize(b)
	}
	return Normalize(a)
}

// Max returns the later of two calendar dates.
func Max(a, b time.Time) time.Time {
	if AfterDay(b, a) {
		return Normalize(b)
	}
	return Normalize(a)
}

// Key returns the canonical map key for a calendar date. Analytics code
// folds logs into date-keyed maps with this so that insertion order never
// influences results.
func Key(t time.Time) string {
	return Format(t)
}
