package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/store"
	"opsched/cmd/internal/utils"
	"opsched/cmd/internal/utils/apierror"
	"sync"
	"time"
)

type LinkStore interface {
	Create(draft scheduling.LinkDraft) (entity.SchedulingLink, error)
	Get(id string) (entity.SchedulingLink, error)
	GetBySlug(slug string) (entity.SchedulingLink, error)
	List() []entity.SchedulingLink
	SetActive(id string, active bool) (entity.SchedulingLink, error)
	Delete(id string) error
}

// EventCreator is where accepted bookings become events.
type EventCreator interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventMutationResponse, apierror.ErrorResponse)
}

type CreateLinkRequest struct {
	Name               string `json:"name" validate:"required,max=120"`
	Owner              string `json:"owner" validate:"required,max=120"`
	OwnerEmail         string `json:"owner_email" validate:"required,email"`
	MeetingType        string `json:"meeting_type" validate:"required,meetingtype"`
	DurationOptions    []int  `json:"duration_options" validate:"required,min=1,max=12,dive,min=1,max=1440"`
	AvailableDays      []int  `json:"available_days" validate:"required,min=1,max=7,dive,weekday"`
	AvailableTimeStart string `json:"available_time_start" validate:"required,hhmm"`
	AvailableTimeEnd   string `json:"available_time_end" validate:"required,hhmm"`
	BufferTime         int    `json:"buffer_time" validate:"min=0,max=240"`
	Timezone           string `json:"timezone" validate:"omitempty,nospaces"`
	IsActive           *bool  `json:"is_active"`
}

type UpdateLinkRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type BookingWindowRequest struct {
	StartTime string `json:"start_time" validate:"required,iso8601"`
	EndTime   string `json:"end_time" validate:"required,iso8601"`
}

type BookLinkRequest struct {
	StartTime  string `json:"start_time" validate:"required,iso8601"`
	EndTime    string `json:"end_time" validate:"required,iso8601"`
	GuestName  string `json:"guest_name" validate:"required,max=120"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email"`
	Title      string `json:"title" validate:"max=200"`
	Notes      string `json:"notes" validate:"max=4000"`
}

type DefaultLinkService struct {
	Links     LinkStore
	Conflicts scheduling.OwnerConflictFinder
	Events    EventCreator
	Validate  *validator.Validate

	// serializes validate-then-create so two guests cannot take the same slot
	bookMu sync.Mutex
}

func NewLinkService(links LinkStore, conflicts scheduling.OwnerConflictFinder, events EventCreator, validate *validator.Validate) *DefaultLinkService {
	return &DefaultLinkService{Links: links, Conflicts: conflicts, Events: events, Validate: validate}
}

func (s *DefaultLinkService) CreateSchedulingLink(req *CreateLinkRequest) (*LinkResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	link, err := s.Links.Create(scheduling.LinkDraft{
		Name:               req.Name,
		Owner:              req.Owner,
		OwnerEmail:         req.OwnerEmail,
		MeetingType:        entity.MeetingType(req.MeetingType),
		DurationOptions:    req.DurationOptions,
		AvailableDays:      req.AvailableDays,
		AvailableTimeStart: req.AvailableTimeStart,
		AvailableTimeEnd:   req.AvailableTimeEnd,
		BufferTime:         req.BufferTime,
		Timezone:           req.Timezone,
		IsActive:           req.IsActive,
	})
	if err != nil {
		return nil, fromCoreError(err, "create scheduling link")
	}
	return toLinkResponse(&link), nil
}

// GetLink accepts either the link id or its slug.
func (s *DefaultLinkService) GetLink(ref string) (*LinkResponse, apierror.ErrorResponse) {
	link, apierr := s.find(ref)
	if apierr != nil {
		return nil, apierr
	}
	return toLinkResponse(&link), nil
}

func (s *DefaultLinkService) ListLinks() []*LinkResponse {
	links := s.Links.List()
	out := make([]*LinkResponse, len(links))
	for i := range links {
		out[i] = toLinkResponse(&links[i])
	}
	return out
}

func (s *DefaultLinkService) SetLinkActive(ref string, req *UpdateLinkRequest) (*LinkResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}
	link, apierr := s.find(ref)
	if apierr != nil {
		return nil, apierr
	}

	updated, err := s.Links.SetActive(link.ID, *req.IsActive)
	if err != nil {
		return nil, fromCoreError(err, "update scheduling link "+link.ID)
	}
	return toLinkResponse(&updated), nil
}

// DeleteLink removes the link. Events already booked through it are kept.
func (s *DefaultLinkService) DeleteLink(ref string) apierror.ErrorResponse {
	link, apierr := s.find(ref)
	if apierr != nil {
		return apierr
	}

	s.bookMu.Lock()
	defer s.bookMu.Unlock()
	if err := s.Links.Delete(link.ID); err != nil {
		return fromCoreError(err, "delete scheduling link "+link.ID)
	}
	return nil
}

// ValidateBooking answers whether the window could be booked right now.
// A rejection is a normal response, not an error.
func (s *DefaultLinkService) ValidateBooking(ref string, req *BookingWindowRequest) (*BookingValidationResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}
	link, apierr := s.find(ref)
	if apierr != nil {
		return nil, apierr
	}
	window, apierr := parseWindow(req.StartTime, req.EndTime)
	if apierr != nil {
		return nil, apierr
	}

	reason, err := scheduling.ValidateBooking(&link, window, s.Conflicts)
	if err != nil {
		return nil, fromCoreError(err, "validate booking for link "+link.ID)
	}
	return toValidationResponse(reason), nil
}

// BookLink validates the window against the link and, when accepted, creates a
// meeting organized by the link owner with the guest as attendee.
func (s *DefaultLinkService) BookLink(ctx context.Context, ref string, req *BookLinkRequest) (*EventResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}
	link, apierr := s.find(ref)
	if apierr != nil {
		return nil, apierr
	}
	window, apierr := parseWindow(req.StartTime, req.EndTime)
	if apierr != nil {
		return nil, apierr
	}

	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	reason, err := scheduling.ValidateBooking(&link, window, s.Conflicts)
	if err != nil {
		return nil, fromCoreError(err, "validate booking for link "+link.ID)
	}
	if reason != nil {
		log.Infof("booking on link %s rejected: %s", link.ID, reason)
		return nil, apierror.NewBookingRejectedError(string(reason.Code), reason.Message)
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s with %s", link.Name, req.GuestName)
	}
	description := fmt.Sprintf("Booked via %s", link.URL)
	if req.GuestEmail != "" {
		description += fmt.Sprintf(" by %s <%s>", req.GuestName, req.GuestEmail)
	}

	created, apierr := s.Events.CreateEvent(ctx, &CreateEventRequest{
		Title:       title,
		Description: description,
		StartTime:   utils.FormatEpoch(window.Start),
		EndTime:     utils.FormatEpoch(window.End),
		Organizer:   link.Owner,
		Attendees:   []string{req.GuestName},
		Category:    string(entity.CategoryMeeting),
		Priority:    string(entity.PriorityMedium),
		Notes:       req.Notes,
	})
	if apierr != nil {
		return nil, apierr
	}
	return created.Event, nil
}

func (s *DefaultLinkService) find(ref string) (entity.SchedulingLink, apierror.ErrorResponse) {
	link, err := s.Links.Get(ref)
	if errors.Is(err, store.ErrNotFound) {
		link, err = s.Links.GetBySlug(ref)
	}
	if err != nil {
		return entity.SchedulingLink{}, fromCoreError(err, "find scheduling link "+ref)
	}
	return link, nil
}

func toValidationResponse(reason *scheduling.RejectionReason) *BookingValidationResponse {
	if reason == nil {
		return &BookingValidationResponse{OK: true}
	}
	resp := &BookingValidationResponse{
		OK:      false,
		Reason:  string(reason.Code),
		Message: reason.Message,
	}
	if len(reason.Conflicts) > 0 {
		resp.Conflicts = toEventResponses(reason.Conflicts, time.UTC)
	}
	return resp
}
