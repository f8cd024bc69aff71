package scheduling

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opsched/cmd/internal/domain/entity"
	"testing"
	"time"
)

func allDay(id string, day time.Time, days int) entity.ScheduleEvent {
	e := timed(id, day.UnixMilli(), day.AddDate(0, 0, days).UnixMilli())
	e.AllDay = true
	return e
}

func TestBuildDayView(t *testing.T) {
	evs := []entity.ScheduleEvent{
		timed("review", at(9, 30), at(11, 0)),
		allDay("offsite", monday(0, 0), 1),
		timed("tomorrow", monday(33, 0).UnixMilli(), monday(34, 0).UnixMilli()),
	}

	dv := BuildDayView(evs, monday(15, 0), time.UTC)
	require.Len(t, dv.Hours, 24)
	assert.Equal(t, monday(0, 0), dv.Date)
	assert.Equal(t, []string{"offsite"}, ids(dv.AllDay))

	for _, b := range dv.Hours {
		switch b.Hour {
		case 9, 10:
			assert.Equal(t, []string{"review"}, ids(b.Events), "hour %d", b.Hour)
		default:
			assert.Empty(t, b.Events, "hour %d", b.Hour)
		}
	}
	assert.Equal(t, monday(23, 0), dv.Hours[23].Start)
	assert.Equal(t, monday(0, 0).AddDate(0, 0, 1), dv.Hours[23].End)
}

func TestBuildWeekView(t *testing.T) {
	wednesday := time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	evs := []entity.ScheduleEvent{
		timed("early", at(5, 0), at(6, 30)),
		timed("late", at(23, 0), at(23, 30)),
		allDay("trip", sunday.AddDate(0, 0, 5), 2),
	}

	wv := BuildWeekView(evs, wednesday, time.UTC)
	assert.Equal(t, sunday, wv.Start)
	assert.Equal(t, sunday.AddDate(0, 0, 7), wv.End)
	require.Len(t, wv.Days, 7)

	for i, d := range wv.Days {
		assert.Equal(t, sunday.AddDate(0, 0, i), d.Date)
		require.Len(t, d.Hours, WeekViewLastHour-WeekViewFirstHour+1)
		assert.Equal(t, WeekViewFirstHour, d.Hours[0].Hour)
		assert.Equal(t, WeekViewLastHour, d.Hours[len(d.Hours)-1].Hour)
	}

	mon := wv.Days[1]
	assert.Equal(t, []string{"early"}, ids(mon.Hours[0].Events))
	assert.Equal(t, []string{"late"}, ids(mon.Hours[len(mon.Hours)-1].Events))

	assert.Empty(t, wv.Days[4].AllDay)
	assert.Equal(t, []string{"trip"}, ids(wv.Days[5].AllDay))
	assert.Equal(t, []string{"trip"}, ids(wv.Days[6].AllDay))
}

func TestBuildMonthView(t *testing.T) {
	jan := func(d, h int) time.Time { return time.Date(2026, 1, d, h, 0, 0, 0, time.UTC) }
	evs := []entity.ScheduleEvent{
		timed("overnight", jan(10, 22).UnixMilli(), jan(11, 1).UnixMilli()),
		allDay("holiday", jan(15, 0), 1),
	}

	mv := BuildMonthView(evs, jan(20, 9), time.UTC)
	assert.Equal(t, 2026, mv.Year)
	assert.Equal(t, time.January, mv.Month)
	// 1 January 2026 is a Thursday
	assert.Equal(t, 4, mv.Leading)
	require.Len(t, mv.Cells, mv.Leading+31)

	for i := 0; i < mv.Leading; i++ {
		assert.Nil(t, mv.Cells[i])
	}
	for d := 1; d <= 31; d++ {
		cell := mv.Cells[mv.Leading+d-1]
		require.NotNil(t, cell)
		assert.Equal(t, d, cell.Day)
		assert.Equal(t, jan(d, 0), cell.Date)

		switch d {
		case 10, 11:
			assert.Equal(t, []string{"overnight"}, ids(cell.Events), "day %d", d)
		case 15:
			assert.Equal(t, []string{"holiday"}, ids(cell.Events))
		default:
			assert.Empty(t, cell.Events, "day %d", d)
		}
	}
}

func TestBuildMonthViewNoLeadingCells(t *testing.T) {
	// 1 February 2026 is a Sunday
	mv := BuildMonthView(nil, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 0, mv.Leading)
	assert.Len(t, mv.Cells, 28)
}

func TestViewsConvertToZone(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC Monday is 01:30 Tuesday at UTC+2
	ev := timed("late", at(23, 30), at(23, 45))

	dv := BuildDayView([]entity.ScheduleEvent{ev}, time.Date(2026, 1, 6, 12, 0, 0, 0, plus2), plus2)
	assert.Equal(t, []string{"late"}, ids(dv.Hours[1].Events))
	assert.Equal(t, plus2, dv.Date.Location())
}
