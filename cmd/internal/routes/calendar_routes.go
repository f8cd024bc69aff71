package routes

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"opsched/cmd/internal/service"
	"opsched/cmd/internal/utils/apierror"
)

type CalendarService interface {
	DayView(date string) (*service.DayViewResponse, apierror.ErrorResponse)
	WeekView(date string) (*service.WeekViewResponse, apierror.ErrorResponse)
	MonthView(month string) (*service.MonthViewResponse, apierror.ErrorResponse)
}

type SuggestionService interface {
	SuggestSlots(req *service.SuggestRequest) (*service.SuggestionsResponse, apierror.ErrorResponse)
}

type DefaultCalendarRoute struct {
	CalendarService   CalendarService
	SuggestionService SuggestionService
}

func NewCalendarDefault(calendarService CalendarService, suggestionService SuggestionService) *DefaultCalendarRoute {
	return &DefaultCalendarRoute{CalendarService: calendarService, SuggestionService: suggestionService}
}

func (r *DefaultCalendarRoute) GetDay(c echo.Context) error {
	view, apierr := r.CalendarService.DayView(c.QueryParam("date"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (r *DefaultCalendarRoute) GetWeek(c echo.Context) error {
	view, apierr := r.CalendarService.WeekView(c.QueryParam("date"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (r *DefaultCalendarRoute) GetMonth(c echo.Context) error {
	view, apierr := r.CalendarService.MonthView(c.QueryParam("month")) // "2025-08"
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, view)
}

func (r *DefaultCalendarRoute) GetSuggestions(c echo.Context) error {
	if c.QueryParam("duration") == "" {
		return c.JSON(400, apierror.NewMissingParamError("duration"))
	}

	req := service.SuggestRequest{HorizonDays: 7, MaxResults: 3}
	err := echo.QueryParamsBinder(c).
		Int("duration", &req.Duration).
		Int("horizon_days", &req.HorizonDays).
		Int("max_results", &req.MaxResults).
		BindError()
	if err != nil {
		apierr := apierror.NewSimple(http.StatusBadRequest, "Query parameters must be integers")
		return c.JSON(apierr.Code(), apierr)
	}

	resp, apierr := r.SuggestionService.SuggestSlots(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
