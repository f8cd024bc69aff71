package service

import (
	"github.com/go-playground/validator/v10"
	"opsched/cmd/internal/scheduling"
	"opsched/cmd/internal/utils"
	"opsched/cmd/internal/utils/apierror"
	"time"
)

type SlotSuggester interface {
	Suggest(durationMinutes, horizonDays, maxResults int, hours scheduling.BusinessHours) ([]time.Time, error)
}

type SuggestRequest struct {
	Duration    int `query:"duration" validate:"required,min=1,max=1440"`
	HorizonDays int `query:"horizon_days" validate:"min=0,max=90"`
	MaxResults  int `query:"max_results" validate:"min=1,max=50"`
}

type DefaultSuggestionService struct {
	Suggester SlotSuggester
	Hours     scheduling.BusinessHours
	Validate  *validator.Validate
}

func NewSuggestionService(suggester SlotSuggester, hours scheduling.BusinessHours, validate *validator.Validate) *DefaultSuggestionService {
	return &DefaultSuggestionService{Suggester: suggester, Hours: hours, Validate: validate}
}

// SuggestSlots proposes the earliest free slots inside business hours.
// An empty list is a normal answer when nothing fits.
func (s *DefaultSuggestionService) SuggestSlots(req *SuggestRequest) (*SuggestionsResponse, apierror.ErrorResponse) {
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	starts, err := s.Suggester.Suggest(req.Duration, req.HorizonDays, req.MaxResults, s.Hours)
	if err != nil {
		return nil, fromCoreError(err, "suggest slots")
	}

	loc := s.Hours.Location
	if loc == nil {
		loc = time.UTC
	}
	d := time.Duration(req.Duration) * time.Minute
	resp := &SuggestionsResponse{Duration: req.Duration, Slots: make([]*SlotResponse, len(starts))}
	for i, t := range starts {
		resp.Slots[i] = &SlotResponse{
			StartTime: utils.FormatIn(t.UnixMilli(), loc),
			EndTime:   utils.FormatIn(t.Add(d).UnixMilli(), loc),
		}
	}
	return resp, nil
}
