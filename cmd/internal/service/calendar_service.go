package service

import (
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/utils"
	"opsched/cmd/internal/utils/apierror"
	"time"
)

type EventLister interface {
	List(window *scheduling.Range) []entity.ScheduleEvent
}

// DefaultCalendarService renders the stored events as day, week and month
// grids in Location. This is the only place instants become wall-clock times.
type DefaultCalendarService struct {
	Events   EventLister
	Location *time.Location
	Now      func() time.Time
}

func NewCalendarService(events EventLister, loc *time.Location) *DefaultCalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultCalendarService{Events: events, Location: loc, Now: time.Now}
}

// DayView takes "YYYY-MM-DD"; an empty date means today.
func (s *DefaultCalendarService) DayView(date string) (*DayViewResponse, apierror.ErrorResponse) {
	anchor, apierr := s.anchor(date)
	if apierr != nil {
		return nil, apierr
	}
	window := scheduling.DayBounds(anchor, s.Location)
	dv := scheduling.BuildDayView(s.Events.List(&window), anchor, s.Location)
	return s.toDayViewResponse(&dv), nil
}

func (s *DefaultCalendarService) WeekView(date string) (*WeekViewResponse, apierror.ErrorResponse) {
	anchor, apierr := s.anchor(date)
	if apierr != nil {
		return nil, apierr
	}
	// Any window holding the whole Sunday..Saturday span will do; the view trims it.
	window := scheduling.NewRange(anchor.AddDate(0, 0, -8), anchor.AddDate(0, 0, 8))
	wv := scheduling.BuildWeekView(s.Events.List(&window), anchor, s.Location)

	resp := &WeekViewResponse{
		Start: wv.Start.Format(time.DateOnly),
		End:   wv.End.Format(time.DateOnly),
		Days:  make([]*DayViewResponse, len(wv.Days)),
	}
	for i := range wv.Days {
		resp.Days[i] = s.toDayViewResponse(&wv.Days[i])
	}
	return resp, nil
}

// MonthView takes "YYYY-MM"; an empty month means the current one.
func (s *DefaultCalendarService) MonthView(month string) (*MonthViewResponse, apierror.ErrorResponse) {
	anchor := s.Now().In(s.Location)
	if month != "" {
		t, err := time.ParseInLocation("2006-01", month, s.Location)
		if err != nil {
			return nil, apierror.NewSimple(400, "Could not understand month format, expected YYYY-MM")
		}
		anchor = t
	}

	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, s.Location)
	window := scheduling.NewRange(first, first.AddDate(0, 1, 0))
	mv := scheduling.BuildMonthView(s.Events.List(&window), anchor, s.Location)

	resp := &MonthViewResponse{
		Year:    mv.Year,
		Month:   int(mv.Month),
		Leading: mv.Leading,
		Cells:   make([]*DayCellResponse, len(mv.Cells)),
	}
	for i, cell := range mv.Cells {
		if cell == nil {
			continue
		}
		resp.Cells[i] = &DayCellResponse{
			Date:   cell.Date.Format(time.DateOnly),
			Day:    cell.Day,
			Events: toEventResponses(cell.Events, s.Location),
		}
	}
	return resp, nil
}

func (s *DefaultCalendarService) anchor(date string) (time.Time, apierror.ErrorResponse) {
	if date == "" {
		return s.Now().In(s.Location), nil
	}
	t, err := utils.ParseDate(date, s.Location)
	if err != nil {
		return time.Time{}, apierror.NewSimple(400, "Could not understand date format, expected YYYY-MM-DD")
	}
	return t, nil
}

func (s *DefaultCalendarService) toDayViewResponse(dv *scheduling.DayView) *DayViewResponse {
	resp := &DayViewResponse{
		Date:   dv.Date.Format(time.DateOnly),
		AllDay: toEventResponses(dv.AllDay, s.Location),
		Hours:  make([]*HourBucketResponse, len(dv.Hours)),
	}
	for i, b := range dv.Hours {
		resp.Hours[i] = &HourBucketResponse{
			Hour:      b.Hour,
			StartTime: b.Start.Format(time.RFC3339),
			EndTime:   b.End.Format(time.RFC3339),
			Events:    toEventResponses(b.Events, s.Location),
		}
	}
	return resp
}
