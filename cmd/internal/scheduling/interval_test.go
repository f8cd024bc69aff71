package scheduling

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func at(h, m int) int64 {
	return time.Date(2026, 1, 5, h, m, 0, 0, time.UTC).UnixMilli()
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Range
		want bool
	}{
		{"partial", Range{at(9, 0), at(10, 0)}, Range{at(9, 30), at(10, 30)}, true},
		{"back to back", Range{at(9, 0), at(10, 0)}, Range{at(10, 0), at(11, 0)}, false},
		{"contained", Range{at(9, 0), at(12, 0)}, Range{at(10, 0), at(11, 0)}, true},
		{"disjoint", Range{at(9, 0), at(10, 0)}, Range{at(11, 0), at(12, 0)}, false},
		{"identical", Range{at(9, 0), at(10, 0)}, Range{at(9, 0), at(10, 0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.a, tc.b))
			assert.Equal(t, tc.want, Overlaps(tc.b, tc.a), "overlap must be symmetric")
		})
	}
}

func TestContains(t *testing.T) {
	r := Range{at(9, 0), at(10, 0)}
	assert.True(t, Contains(r, at(9, 0)))
	assert.True(t, Contains(r, at(9, 59)))
	assert.False(t, Contains(r, at(10, 0)))
	assert.False(t, Contains(r, at(8, 59)))
}

func TestRangeHelpers(t *testing.T) {
	r := Range{at(9, 0), at(10, 0)}
	assert.False(t, r.Empty())
	assert.True(t, Range{at(10, 0), at(10, 0)}.Empty())
	assert.Equal(t, time.Hour, r.Duration())
	assert.Equal(t, Range{at(8, 45), at(10, 15)}, r.Expand(15*time.Minute))

	assert.Equal(t, -1, Compare(r, Range{at(9, 30), at(10, 0)}))
	assert.Equal(t, -1, Compare(r, Range{at(9, 0), at(11, 0)}))
	assert.Equal(t, 0, Compare(r, r))
	assert.Equal(t, 1, Compare(Range{at(11, 0), at(12, 0)}, r))
}

func TestNormalizeAllDay(t *testing.T) {
	midnight := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("single day from any instant", func(t *testing.T) {
		r := NormalizeAllDay(at(14, 30), at(14, 30), time.UTC)
		assert.Equal(t, NewRange(midnight, midnight.AddDate(0, 0, 1)), r)
	})

	t.Run("spans to the day holding the end", func(t *testing.T) {
		end := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC).UnixMilli()
		r := NormalizeAllDay(at(8, 0), end, time.UTC)
		assert.Equal(t, NewRange(midnight, midnight.AddDate(0, 0, 3)), r)
	})

	t.Run("end at midnight is exclusive", func(t *testing.T) {
		r := NormalizeAllDay(midnight.UnixMilli(), midnight.AddDate(0, 0, 1).UnixMilli(), time.UTC)
		assert.Equal(t, NewRange(midnight, midnight.AddDate(0, 0, 1)), r)
	})

	t.Run("uses the given zone", func(t *testing.T) {
		plus2 := time.FixedZone("UTC+2", 2*60*60)
		// 23:00 UTC on the 5th is already the 6th at UTC+2
		r := NormalizeAllDay(at(23, 0), at(23, 0), plus2)
		local := time.Date(2026, 1, 6, 0, 0, 0, 0, plus2)
		assert.Equal(t, NewRange(local, local.AddDate(0, 0, 1)), r)
	})
}

func TestDayBounds(t *testing.T) {
	r := DayBounds(time.Date(2026, 1, 5, 13, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, at(0, 0), r.Start)
	assert.Equal(t, 24*time.Hour, r.Duration())
}
