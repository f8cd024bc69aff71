package routes

import (
	"context"
	"github.com/labstack/echo/v4"
	"net/http"
	"opsched/cmd/internal/service"
	"opsched/cmd/internal/utils/apierror"
	"strings"
)

type LinkService interface {
	CreateSchedulingLink(req *service.CreateLinkRequest) (*service.LinkResponse, apierror.ErrorResponse)
	GetLink(ref string) (*service.LinkResponse, apierror.ErrorResponse)
	ListLinks() []*service.LinkResponse
	SetLinkActive(ref string, req *service.UpdateLinkRequest) (*service.LinkResponse, apierror.ErrorResponse)
	DeleteLink(ref string) apierror.ErrorResponse
	ValidateBooking(ref string, req *service.BookingWindowRequest) (*service.BookingValidationResponse, apierror.ErrorResponse)
	BookLink(ctx context.Context, ref string, req *service.BookLinkRequest) (*service.EventResponse, apierror.ErrorResponse)
}

type DefaultLinkRoute struct {
	LinkService LinkService
}

func NewLinkDefault(linkService LinkService) *DefaultLinkRoute {
	return &DefaultLinkRoute{LinkService: linkService}
}

func (r *DefaultLinkRoute) GetLinks(c echo.Context) error {
	resp := echo.Map{"links": r.LinkService.ListLinks()}
	return c.JSON(http.StatusOK, &resp)
}

// GetLink accepts an id or a slug in :id.
func (r *DefaultLinkRoute) GetLink(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	link, apierr := r.LinkService.GetLink(ref)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, link)
}

func (r *DefaultLinkRoute) CreateLink(c echo.Context) error {
	var req service.CreateLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	link, apierr := r.LinkService.CreateSchedulingLink(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, link)
}

func (r *DefaultLinkRoute) UpdateLink(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	var req service.UpdateLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	link, apierr := r.LinkService.SetLinkActive(ref, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, link)
}

func (r *DefaultLinkRoute) DeleteLink(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	if apierr := r.LinkService.DeleteLink(ref); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *DefaultLinkRoute) ValidateBooking(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	var req service.BookingWindowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	resp, apierr := r.LinkService.ValidateBooking(ref, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultLinkRoute) CreateBooking(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("id"))
	if ref == "" {
		return c.JSON(400, apierror.NewMissingParamError("id"))
	}

	var req service.BookLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apierror.MalformedBodyError)
	}

	event, apierr := r.LinkService.BookLink(c.Request().Context(), ref, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, event)
}
