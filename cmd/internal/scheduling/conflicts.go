package scheduling

import "opsched/cmd/internal/domain/entity"

// EventReader is the read side of the event store.
type EventReader interface {
	List(window *Range) []entity.ScheduleEvent
}

// FindConflicts returns every event overlapping candidate, skipping excludeID.
// Matches are neither merged nor deduplicated and keep the input order.
func FindConflicts(events []entity.ScheduleEvent, candidate Range, excludeID string) []entity.ScheduleEvent {
	var out []entity.ScheduleEvent
	for i := range events {
		if excludeID != "" && events[i].ID == excludeID {
			continue
		}
		if Overlaps(candidate, EventRange(&events[i])) {
			out = append(out, events[i])
		}
	}
	return out
}

type ConflictDetector struct {
	events EventReader
}

func NewConflictDetector(events EventReader) *ConflictDetector {
	return &ConflictDetector{events: events}
}

func (d *ConflictDetector) FindConflicts(candidate Range, excludeID string) ([]entity.ScheduleEvent, error) {
	if candidate.Empty() {
		return nil, invalid("end_time", "must be after start_time")
	}
	return FindConflicts(d.events.List(&candidate), candidate, excludeID), nil
}

// FindConflictsFor only considers events organized or attended by owner.
func (d *ConflictDetector) FindConflictsFor(candidate Range, owner string) ([]entity.ScheduleEvent, error) {
	all, err := d.FindConflicts(candidate, "")
	if err != nil {
		return nil, err
	}
	var out []entity.ScheduleEvent
	for i := range all {
		if all[i].Involves(owner) {
			out = append(out, all[i])
		}
	}
	return out, nil
}
