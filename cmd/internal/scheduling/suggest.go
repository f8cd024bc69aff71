package scheduling

import (
	"opsched/cmd/internal/domain/entity"
	"time"
)

const DefaultSlotStep = 30 * time.Minute

// ConflictFinder is what the suggester needs from the conflict detector.
type ConflictFinder interface {
	FindConflicts(candidate Range, excludeID string) ([]entity.ScheduleEvent, error)
}

// BusinessHours is the daily window slots must fit in.
// Open and Close are minutes since local midnight; Close may be 1440.
type BusinessHours struct {
	Open     int
	Close    int
	Days     []time.Weekday
	Location *time.Location
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Open:     9 * 60,
		Close:    17 * 60,
		Days:     []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Location: time.UTC,
	}
}

func (h BusinessHours) validate() error {
	if h.Open < 0 || h.Close > 24*60 || h.Open >= h.Close {
		return invalid("business_hours", "opening must be before closing within one day")
	}
	if len(h.Days) == 0 {
		return invalid("business_days", "at least one day is required")
	}
	return nil
}

func (h BusinessHours) allows(d time.Weekday) bool {
	for _, day := range h.Days {
		if day == d {
			return true
		}
	}
	return false
}

func (h BusinessHours) at(day time.Time, minutes int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, h.Location)
}

// Suggester proposes the earliest free start instants with a greedy forward scan.
type Suggester struct {
	conflicts ConflictFinder
	now       func() time.Time
	step      time.Duration
}

func NewSuggester(conflicts ConflictFinder, now func() time.Time, step time.Duration) *Suggester {
	if now == nil {
		now = time.Now
	}
	if step <= 0 {
		step = DefaultSlotStep
	}
	return &Suggester{conflicts: conflicts, now: now, step: step}
}

// Suggest returns up to maxResults slot starts (UTC) in chronological order.
// The horizon runs through the end of the local day horizonDays after today.
// Finding fewer slots than requested, or none, is not an error.
func (s *Suggester) Suggest(durationMinutes, horizonDays, maxResults int, hours BusinessHours) ([]time.Time, error) {
	if durationMinutes <= 0 {
		return nil, invalid("duration", "must be a positive number of minutes")
	}
	if horizonDays < 0 {
		return nil, invalid("horizon_days", "must not be negative")
	}
	if maxResults <= 0 {
		return nil, invalid("max_results", "must be positive")
	}
	if hours.Location == nil {
		hours.Location = time.UTC
	}
	if err := hours.validate(); err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	now := s.now().In(hours.Location)
	today := startOfDay(now, hours.Location)
	horizonEnd := today.AddDate(0, 0, horizonDays+1)

	t := s.roundUp(now, today)
	var slots []time.Time
	for t.Before(horizonEnd) && len(slots) < maxResults {
		day := startOfDay(t, hours.Location)
		nextOpening := hours.at(day.AddDate(0, 0, 1), hours.Open)

		if !hours.allows(day.Weekday()) {
			t = nextOpening
			continue
		}
		if open := hours.at(day, hours.Open); t.Before(open) {
			t = open
			continue
		}
		end := t.Add(duration)
		if end.After(hours.at(day, hours.Close)) {
			t = nextOpening
			continue
		}

		conflicts, err := s.conflicts.FindConflicts(NewRange(t, end), "")
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			slots = append(slots, t.UTC())
		}
		t = t.Add(s.step)
	}
	return slots, nil
}

// roundUp moves now forward to the next step boundary counted from local midnight.
func (s *Suggester) roundUp(now, midnight time.Time) time.Time {
	offset := now.Sub(midnight)
	n := offset / s.step
	if offset%s.step != 0 {
		n++
	}
	return midnight.Add(n * s.step)
}
