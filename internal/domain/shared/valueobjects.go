// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"

	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// DateRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DateRange represents an inclusive calendar-date window [Start, End].
// Both bounds are normalized dates at midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a DateRange with validation.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: dateutil.Normalize(start), End: dateutil.Normalize(end)}
	if !r.IsValid() {
		return DateRange{}, ErrInvalidWindow
	}
	return r, nil
}

// IsValid checks that the window is non-empty and ordered.
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !dateutil.AfterDay(r.Start, r.End)
}

// Days returns the inclusive number of calendar days in the range.
func (r DateRange) Days() int {
	return dateutil.InclusiveDays(r.Start, r.End)
}

// Contains reports whether the date falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !dateutil.BeforeDay(d, r.Start) && !dateutil.AfterDay(d, r.End)
}

// Intersects reports whether the half-open commitment interval
// [start, end-or-open] overlaps the range. A nil end means the interval
// is open-ended.
func (r DateRange) Intersects(start time.Time, end *time.Time) bool {
	if dateutil.AfterDay(start, r.End) {
		return false
	}
	if end != nil && dateutil.BeforeDay(*end, r.Start) {
		return false
	}
	return true
}

// Clip returns the intersection of the range with [start, end], leaving
// either bound alone when the corresponding argument is zero.
func (r DateRange) Clip(start, end time.Time) DateRange {
	out := r
	if !start.IsZero() {
		out.Start = dateutil.Max(out.Start, start)
	}
	if !end.IsZero() {
		out.End = dateutil.Min(out.End, end)
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}
