package scheduling

import "time"

// Range is a half-open interval [Start, End) in epoch milliseconds (UTC).
type Range struct {
	Start int64
	End   int64
}

func NewRange(start, end time.Time) Range {
	return Range{Start: start.UnixMilli(), End: end.UnixMilli()}
}

func (r Range) Empty() bool {
	return r.End <= r.Start
}

func (r Range) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Millisecond
}

// Expand widens the range by d on both sides.
func (r Range) Expand(d time.Duration) Range {
	ms := d.Milliseconds()
	return Range{Start: r.Start - ms, End: r.End + ms}
}

// Overlaps reports whether a and b share at least one instant.
// Back-to-back ranges (a.End == b.Start) do not overlap.
func Overlaps(a, b Range) bool {
	return a.Start < b.End && b.Start < a.End
}

func Contains(r Range, instant int64) bool {
	return r.Start <= instant && instant < r.End
}

// Compare orders ranges by start, then end.
func Compare(a, b Range) int {
	switch {
	case a.Start < b.Start:
		return -1
	case a.Start > b.Start:
		return 1
	case a.End < b.End:
		return -1
	case a.End > b.End:
		return 1
	}
	return 0
}

// DayBounds returns the local calendar day containing t as a half-open range.
func DayBounds(t time.Time, loc *time.Location) Range {
	start := startOfDay(t, loc)
	return NewRange(start, start.AddDate(0, 0, 1))
}

// NormalizeAllDay snaps an all-day range onto whole local days: the start moves
// to midnight of its day and the end to midnight after the last covered day.
// An end at or before start yields a single day.
func NormalizeAllDay(start, end int64, loc *time.Location) Range {
	first := startOfDay(time.UnixMilli(start), loc)
	last := first
	if end > start {
		last = startOfDay(time.UnixMilli(end-1), loc)
	}
	return NewRange(first, last.AddDate(0, 0, 1))
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
