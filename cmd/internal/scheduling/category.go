package scheduling

import "opsched/cmd/internal/domain/entity"

var categoryTypes = map[entity.Category]entity.EventType{
	entity.CategoryITMaintenance:  entity.TypeMaintenance,
	entity.CategorySoftwareUpdate: entity.TypeUpdate,
	entity.CategoryMeeting:        entity.TypeMeeting,
	entity.CategoryProject:        entity.TypeProject,
}

// TypeForCategory returns the derived event type. ok is false for unknown categories.
func TypeForCategory(c entity.Category) (entity.EventType, bool) {
	t, ok := categoryTypes[c]
	return t, ok
}

func ValidPriority(p entity.Priority) bool {
	switch p {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityCritical:
		return true
	}
	return false
}

func ValidStatus(s entity.Status) bool {
	switch s {
	case entity.StatusScheduled, entity.StatusInProgress, entity.StatusCompleted, entity.StatusCancelled:
		return true
	}
	return false
}

func ValidMeetingType(m entity.MeetingType) bool {
	switch m {
	case entity.MeetingOneOnOne, entity.MeetingGroup, entity.MeetingWebinar:
		return true
	}
	return false
}

// EventRange returns the stored half-open range of an event.
func EventRange(e *entity.ScheduleEvent) Range {
	return Range{Start: e.StartTime, End: e.EndTime}
}
