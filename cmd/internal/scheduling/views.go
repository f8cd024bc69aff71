package scheduling

import (
	"opsched/cmd/internal/domain/entity"
	"time"
)

// Week view hour window, inclusive.
const (
	WeekViewFirstHour = 6
	WeekViewLastHour  = 23
)

type HourBucket struct {
	Hour   int
	Start  time.Time
	End    time.Time
	Events []entity.ScheduleEvent
}

type DayView struct {
	Date   time.Time
	AllDay []entity.ScheduleEvent
	Hours  []HourBucket
}

type WeekView struct {
	Start time.Time
	End   time.Time
	Days  []DayView
}

type DayCell struct {
	Date   time.Time
	Day    int
	Events []entity.ScheduleEvent
}

// MonthView is a grid whose first Leading cells are blank (nil) so day 1
// sits under its weekday column.
type MonthView struct {
	Year    int
	Month   time.Month
	Leading int
	Cells   []*DayCell
}

// BuildDayView buckets events into the 24 local hours of anchor's day.
func BuildDayView(events []entity.ScheduleEvent, anchor time.Time, loc *time.Location) DayView {
	if loc == nil {
		loc = time.UTC
	}
	return buildDay(events, startOfDay(anchor, loc), 0, 23)
}

// BuildWeekView covers Sunday through Saturday of anchor's week.
func BuildWeekView(events []entity.ScheduleEvent, anchor time.Time, loc *time.Location) WeekView {
	if loc == nil {
		loc = time.UTC
	}
	day := startOfDay(anchor, loc)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))

	w := WeekView{Start: sunday, End: sunday.AddDate(0, 0, 7)}
	for i := 0; i < 7; i++ {
		w.Days = append(w.Days, buildDay(events, sunday.AddDate(0, 0, i), WeekViewFirstHour, WeekViewLastHour))
	}
	return w
}

// BuildMonthView lays out every day of anchor's month after the leading padding.
func BuildMonthView(events []entity.ScheduleEvent, anchor time.Time, loc *time.Location) MonthView {
	if loc == nil {
		loc = time.UTC
	}
	a := anchor.In(loc)
	first := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	mv := MonthView{
		Year:    first.Year(),
		Month:   first.Month(),
		Leading: int(first.Weekday()),
	}
	mv.Cells = make([]*DayCell, mv.Leading, mv.Leading+days)
	for d := 1; d <= days; d++ {
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, loc)
		cell := &DayCell{Date: date, Day: d}
		bounds := NewRange(date, date.AddDate(0, 0, 1))
		for i := range events {
			if onDay(&events[i], date, bounds) {
				cell.Events = append(cell.Events, events[i])
			}
		}
		mv.Cells = append(mv.Cells, cell)
	}
	return mv
}

func buildDay(events []entity.ScheduleEvent, day time.Time, firstHour, lastHour int) DayView {
	loc := day.Location()
	bounds := NewRange(day, day.AddDate(0, 0, 1))
	dv := DayView{Date: day}

	for i := range events {
		if events[i].AllDay && onDay(&events[i], day, bounds) {
			dv.AllDay = append(dv.AllDay, events[i])
		}
	}
	y, m, d := day.Date()
	for h := firstHour; h <= lastHour; h++ {
		b := HourBucket{
			Hour:  h,
			Start: time.Date(y, m, d, h, 0, 0, 0, loc),
			End:   time.Date(y, m, d, h+1, 0, 0, 0, loc),
		}
		slot := NewRange(b.Start, b.End)
		for i := range events {
			if !events[i].AllDay && Overlaps(slot, EventRange(&events[i])) {
				b.Events = append(b.Events, events[i])
			}
		}
		dv.Hours = append(dv.Hours, b)
	}
	return dv
}

// onDay matches all-day events by calendar date and timed events by overlap
// with the day's [00:00, 24:00) range.
func onDay(e *entity.ScheduleEvent, day time.Time, bounds Range) bool {
	if !e.AllDay {
		return Overlaps(bounds, EventRange(e))
	}
	loc := day.Location()
	first := civil(time.UnixMilli(e.StartTime).In(loc))
	last := first
	if e.EndTime > e.StartTime {
		last = civil(time.UnixMilli(e.EndTime - 1).In(loc))
	}
	d := civil(day)
	return first <= d && d <= last
}

func civil(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
