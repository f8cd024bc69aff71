package routes

import (
	"context"
	"github.com/labstack/echo/v4"
	"net/http"
	"opsched/cmd/internal/service"
	"opsched/cmd/internal/utils/apierror"
	"strings"
)

type EventService interface {
	CreateEvent(ctx context.Context, req *service.CreateEventRequest) (*service.EventMutationResponse, apierror.ErrorResponse)
	UpdateEvent(ctx context.Context, id string, req *service.UpdateEventRequest) (*service.EventMutationResponse, apierror.ErrorResponse)
	DeleteEvent(ctx context.Context, id string) apierror.ErrorResponse
	GetEvent(id string) (*service.EventResponse, apierror.ErrorResponse)
	ListEvents(from, to string) ([]*service.EventResponse, apierror.ErrorResponse)
	FindConflicts(start, end, excludeID string) ([]*service.EventResponse, apierror.ErrorResponse)
}

type DefaultEventRoute struct {
	EventService EventService
}

func NewEventDefault(eventService EventService) *DefaultEventRoute {
	return &DefaultEventRoute{EventService: eventService}
}

func (r *DefaultEventRoute) GetEvents(c echo.Context) error {
	events, apierr := r.EventService.ListEvents(c.QueryParam("from"), c.QueryParam("to"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"events": events}
	return c.JSON(http.StatusOK, &resp)
}

func (r *DefaultEventRoute) GetEvent(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	event, apierr := r.EventService.GetEvent(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, event)
}

func (r *DefaultEventRoute) CreateEvent(c echo.Context) error {
	var req service.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	resp, apierr := r.EventService.CreateEvent(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (r *DefaultEventRoute) UpdateEvent(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	var req service.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	resp, apierr := r.EventService.UpdateEvent(c.Request().Context(), id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultEventRoute) DeleteEvent(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	apierr := r.EventService.DeleteEvent(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *DefaultEventRoute) GetConflicts(c echo.Context) error {
	start, end := c.QueryParam("start"), c.QueryParam("end")
	if start == "" {
		return c.JSON(400, apierror.NewMissingParamError("start"))
	}
	if end == "" {
		return c.JSON(400, apierror.NewMissingParamError("end"))
	}

	conflicts, apierr := r.EventService.FindConflicts(start, end, c.QueryParam("exclude_id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"conflicts": conflicts, "has_conflicts": len(conflicts) > 0}
	return c.JSON(http.StatusOK, &resp)
}
