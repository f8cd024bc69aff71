package service

import (
	"context"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/notify"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/store"
	"opsched/cmd/internal/utils"
	"opsched/cmd/internal/utils/apierror"
	"time"
)

type EventStore interface {
	Create(draft store.EventDraft) (entity.ScheduleEvent, error)
	Update(id string, patch store.EventPatch) (entity.ScheduleEvent, error)
	Delete(id string) (entity.ScheduleEvent, error)
	Get(id string) (entity.ScheduleEvent, error)
	List(window *scheduling.Range) []entity.ScheduleEvent
}

type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	StartTime   string   `json:"start_time" validate:"required,iso8601"`
	EndTime     string   `json:"end_time" validate:"omitempty,iso8601"`
	AllDay      bool     `json:"all_day"`
	Organizer   string   `json:"organizer" validate:"max=120"`
	Attendees   []string `json:"attendees" validate:"max=200,dive,required,max=120"`
	Location    string   `json:"location" validate:"max=200"`
	Category    string   `json:"category" validate:"required,category"`
	Priority    string   `json:"priority" validate:"omitempty,priority"`
	Status      string   `json:"status" validate:"omitempty,eventstatus"`
	Notes       string   `json:"notes" validate:"max=4000"`
}

// UpdateEventRequest is a partial update: absent fields keep their values.
type UpdateEventRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=4000"`
	StartTime   *string   `json:"start_time" validate:"omitempty,iso8601"`
	EndTime     *string   `json:"end_time" validate:"omitempty,iso8601"`
	AllDay      *bool     `json:"all_day"`
	Organizer   *string   `json:"organizer" validate:"omitempty,max=120"`
	Attendees   *[]string `json:"attendees" validate:"omitempty,max=200,dive,required,max=120"`
	Location    *string   `json:"location" validate:"omitempty,max=200"`
	Category    *string   `json:"category" validate:"omitempty,category"`
	Priority    *string   `json:"priority" validate:"omitempty,priority"`
	Status      *string   `json:"status" validate:"omitempty,eventstatus"`
	Notes       *string   `json:"notes" validate:"omitempty,max=4000"`
}

type DefaultEventService struct {
	Store     EventStore
	Conflicts *scheduling.ConflictDetector
	Notifier  notify.Notifier
	Validate  *validator.Validate
}

func NewEventService(st EventStore, notifier notify.Notifier, validate *validator.Validate) *DefaultEventService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &DefaultEventService{
		Store:     st,
		Conflicts: scheduling.NewConflictDetector(st),
		Notifier:  notifier,
		Validate:  validate,
	}
}

func (s *DefaultEventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventMutationResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	start, err := utils.FromEpoch(req.StartTime)
	if err != nil {
		return nil, apierror.NewInvalidFieldError("start_time", "must be an RFC 3339 timestamp")
	}
	if req.EndTime == "" && !req.AllDay {
		return nil, apierror.NewInvalidFieldError("end_time", "is required")
	}
	end := start
	if req.EndTime != "" {
		if end, err = utils.FromEpoch(req.EndTime); err != nil {
			return nil, apierror.NewInvalidFieldError("end_time", "must be an RFC 3339 timestamp")
		}
	}

	event, err := s.Store.Create(store.EventDraft{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		AllDay:      req.AllDay,
		Organizer:   req.Organizer,
		Attendees:   req.Attendees,
		Location:    req.Location,
		Category:    entity.Category(req.Category),
		Priority:    entity.Priority(req.Priority),
		Status:      entity.Status(req.Status),
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, fromCoreError(err, "create event")
	}

	s.notify(ctx, notify.EventCreated, event)
	return s.withConflicts(&event)
}

func (s *DefaultEventService) UpdateEvent(ctx context.Context, id string, req *UpdateEventRequest) (*EventMutationResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	patch := store.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		AllDay:      req.AllDay,
		Organizer:   req.Organizer,
		Attendees:   req.Attendees,
		Location:    req.Location,
		Notes:       req.Notes,
	}
	if req.StartTime != nil {
		v, err := utils.FromEpoch(*req.StartTime)
		if err != nil {
			return nil, apierror.NewInvalidFieldError("start_time", "must be an RFC 3339 timestamp")
		}
		patch.StartTime = &v
	}
	if req.EndTime != nil {
		v, err := utils.FromEpoch(*req.EndTime)
		if err != nil {
			return nil, apierror.NewInvalidFieldError("end_time", "must be an RFC 3339 timestamp")
		}
		patch.EndTime = &v
	}
	if req.Category != nil {
		c := entity.Category(*req.Category)
		patch.Category = &c
	}
	if req.Priority != nil {
		p := entity.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.Status != nil {
		st := entity.Status(*req.Status)
		patch.Status = &st
	}

	event, err := s.Store.Update(id, patch)
	if err != nil {
		return nil, fromCoreError(err, "update event "+id)
	}

	s.notify(ctx, notify.EventUpdated, event)
	return s.withConflicts(&event)
}

func (s *DefaultEventService) DeleteEvent(ctx context.Context, id string) apierror.ErrorResponse {
	event, err := s.Store.Delete(id)
	if err != nil {
		return fromCoreError(err, "delete event "+id)
	}
	s.notify(ctx, notify.EventDeleted, event)
	return nil
}

func (s *DefaultEventService) GetEvent(id string) (*EventResponse, apierror.ErrorResponse) {
	event, err := s.Store.Get(id)
	if err != nil {
		return nil, fromCoreError(err, "get event "+id)
	}
	return toEventResponse(&event, time.UTC), nil
}

// ListEvents returns every event, or those intersecting [from, to) when both are given.
func (s *DefaultEventService) ListEvents(from, to string) ([]*EventResponse, apierror.ErrorResponse) {
	if from == "" && to == "" {
		return toEventResponses(s.Store.List(nil), time.UTC), nil
	}
	if from == "" {
		return nil, apierror.NewMissingParamError("from")
	}
	if to == "" {
		return nil, apierror.NewMissingParamError("to")
	}

	window, apierr := parseWindow(from, to)
	if apierr != nil {
		return nil, apierr
	}
	return toEventResponses(s.Store.List(&window), time.UTC), nil
}

func (s *DefaultEventService) FindConflicts(start, end, excludeID string) ([]*EventResponse, apierror.ErrorResponse) {
	window, apierr := parseWindow(start, end)
	if apierr != nil {
		return nil, apierr
	}

	found, err := s.Conflicts.FindConflicts(window, excludeID)
	if err != nil {
		return nil, fromCoreError(err, "find conflicts")
	}
	return toEventResponses(found, time.UTC), nil
}

func (s *DefaultEventService) withConflicts(event *entity.ScheduleEvent) (*EventMutationResponse, apierror.ErrorResponse) {
	found, err := s.Conflicts.FindConflicts(scheduling.EventRange(event), event.ID)
	if err != nil {
		return nil, fromCoreError(err, "find conflicts for "+event.ID)
	}
	return &EventMutationResponse{
		Event:     toEventResponse(event, time.UTC),
		Conflicts: toEventResponses(found, time.UTC),
	}, nil
}

// notify runs after the store commit; a failed notification never undoes it.
func (s *DefaultEventService) notify(ctx context.Context, kind notify.Kind, event entity.ScheduleEvent) {
	change := notify.Change{Kind: kind, Event: event, At: utils.NowUTC()}
	if err := s.Notifier.Notify(ctx, change); err != nil {
		log.Errorf("failed to notify %s for event %s: %v", kind, event.ID, err)
	}
}
