package service

import (
	"errors"
	"github.com/labstack/gommon/log"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/store"
	"opsched/cmd/internal/utils"
	"opsched/cmd/internal/utils/apierror"
	"time"
)

type EventResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	AllDay      bool     `json:"all_day"`
	Organizer   string   `json:"organizer,omitempty"`
	Attendees   []string `json:"attendees"`
	Location    string   `json:"location,omitempty"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// EventMutationResponse carries the stored event plus any events it now overlaps.
// Overlaps are reported, not refused.
type EventMutationResponse struct {
	Event     *EventResponse   `json:"event"`
	Conflicts []*EventResponse `json:"conflicts"`
}

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SuggestionsResponse struct {
	Duration int             `json:"duration"`
	Slots    []*SlotResponse `json:"slots"`
}

type HourBucketResponse struct {
	Hour      int              `json:"hour"`
	StartTime string           `json:"start_time"`
	EndTime   string           `json:"end_time"`
	Events    []*EventResponse `json:"events"`
}

type DayViewResponse struct {
	Date   string                `json:"date"`
	AllDay []*EventResponse      `json:"all_day"`
	Hours  []*HourBucketResponse `json:"hours"`
}

type WeekViewResponse struct {
	Start string             `json:"start"`
	End   string             `json:"end"`
	Days  []*DayViewResponse `json:"days"`
}

type DayCellResponse struct {
	Date   string           `json:"date"`
	Day    int              `json:"day"`
	Events []*EventResponse `json:"events"`
}

type MonthViewResponse struct {
	Year    int                `json:"year"`
	Month   int                `json:"month"`
	Leading int                `json:"leading"`
	Cells   []*DayCellResponse `json:"cells"`
}

type LinkResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	Owner              string `json:"owner"`
	OwnerEmail         string `json:"owner_email"`
	URL                string `json:"url"`
	MeetingType        string `json:"meeting_type"`
	DurationOptions    []int  `json:"duration_options"`
	AvailableDays      []int  `json:"available_days"`
	AvailableTimeStart string `json:"available_time_start"`
	AvailableTimeEnd   string `json:"available_time_end"`
	BufferTime         int    `json:"buffer_time"`
	Timezone           string `json:"timezone"`
	IsActive           bool   `json:"is_active"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type BookingValidationResponse struct {
	OK        bool             `json:"ok"`
	Reason    string           `json:"reason,omitempty"`
	Message   string           `json:"message,omitempty"`
	Conflicts []*EventResponse `json:"conflicts,omitempty"`
}

func toEventResponse(e *entity.ScheduleEvent, loc *time.Location) *EventResponse {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   utils.FormatIn(e.StartTime, loc),
		EndTime:     utils.FormatIn(e.EndTime, loc),
		AllDay:      e.AllDay,
		Organizer:   e.Organizer,
		Attendees:   attendees,
		Location:    e.Location,
		Category:    string(e.Category),
		Type:        string(e.Type),
		Priority:    string(e.Priority),
		Status:      string(e.Status),
		Notes:       e.Notes,
		CreatedAt:   utils.FormatEpoch(e.CreatedAt),
		UpdatedAt:   utils.FormatEpoch(e.UpdatedAt),
	}
}

func toEventResponses(events []entity.ScheduleEvent, loc *time.Location) []*EventResponse {
	out := make([]*EventResponse, len(events))
	for i := range events {
		out[i] = toEventResponse(&events[i], loc)
	}
	return out
}

func toLinkResponse(l *entity.SchedulingLink) *LinkResponse {
	return &LinkResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Slug:               l.Slug,
		Owner:              l.Owner,
		OwnerEmail:         l.OwnerEmail,
		URL:                l.URL,
		MeetingType:        string(l.MeetingType),
		DurationOptions:    l.DurationOptions,
		AvailableDays:      l.AvailableDays,
		AvailableTimeStart: scheduling.FormatClock(l.AvailableTimeStart),
		AvailableTimeEnd:   scheduling.FormatClock(l.AvailableTimeEnd),
		BufferTime:         l.BufferTime,
		Timezone:           l.Timezone,
		IsActive:           l.IsActive,
		CreatedAt:          utils.FormatEpoch(l.CreatedAt),
		UpdatedAt:          utils.FormatEpoch(l.UpdatedAt),
	}
}

// fromCoreError translates engine and store errors into API errors.
// Anything unrecognized is logged and hidden behind a 500.
func fromCoreError(err error, action string) apierror.ErrorResponse {
	var verr *scheduling.ValidationError
	switch {
	case errors.As(err, &verr):
		return apierror.NewInvalidFieldError(verr.Field, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		return apierror.NotFoundError
	default:
		log.Errorf("failed to %s: %v", action, err)
		return apierror.InternalServerError
	}
}

func parseWindow(start, end string) (scheduling.Range, apierror.ErrorResponse) {
	s, err := utils.FromEpoch(start)
	if err != nil {
		return scheduling.Range{}, apierror.NewInvalidParamTypeError("start", "RFC 3339 timestamp")
	}
	e, err := utils.FromEpoch(end)
	if err != nil {
		return scheduling.Range{}, apierror.NewInvalidParamTypeError("end", "RFC 3339 timestamp")
	}
	if e <= s {
		return scheduling.Range{}, apierror.NewInvalidFieldError("end", "must be after start")
	}
	return scheduling.Range{Start: s, End: e}, nil
}
