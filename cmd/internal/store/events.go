package store

import (
	"cmp"
	"fmt"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/scheduling"
	"slices"
	"strings"
	"sync"
)

// EventPersistence is the durable backend the store writes through to.
type EventPersistence interface {
	Save(event *entity.ScheduleEvent) error
	Delete(id string) error
	FindAll() ([]*entity.ScheduleEvent, error)
}

type EventStore interface {
	Create(draft EventDraft) (entity.ScheduleEvent, error)
	Update(id string, patch EventPatch) (entity.ScheduleEvent, error)
	Delete(id string) (entity.ScheduleEvent, error)
	Get(id string) (entity.ScheduleEvent, error)
	List(window *scheduling.Range) []entity.ScheduleEvent
}

type EventDraft struct {
	Title       string
	Description string
	StartTime   int64
	EndTime     int64
	AllDay      bool
	Organizer   string
	Attendees   []string
	Location    string
	Category    entity.Category
	Priority    entity.Priority
	Status      entity.Status
	Notes       string
}

// EventPatch carries a partial update; nil fields are left untouched.
type EventPatch struct {
	Title       *string
	Description *string
	StartTime   *int64
	EndTime     *int64
	AllDay      *bool
	Organizer   *string
	Attendees   *[]string
	Location    *string
	Category    *entity.Category
	Priority    *entity.Priority
	Status      *entity.Status
	Notes       *string
}

// MemoryEventStore keeps events in memory behind a RWMutex and, when given a
// persistence backend, writes through to it before committing in memory.
type MemoryEventStore struct {
	mu      sync.RWMutex
	events  map[string]*entity.ScheduleEvent
	persist EventPersistence
	opts    options
}

func NewEventStore(persist EventPersistence, opts ...Option) *MemoryEventStore {
	return &MemoryEventStore{
		events:  make(map[string]*entity.ScheduleEvent),
		persist: persist,
		opts:    buildOptions(opts),
	}
}

// Load replaces the in-memory state with everything the backend holds.
func (s *MemoryEventStore) Load() error {
	if s.persist == nil {
		return nil
	}
	all, err := s.persist.FindAll()
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]*entity.ScheduleEvent, len(all))
	for _, e := range all {
		s.events[e.ID] = e
	}
	return nil
}

func (s *MemoryEventStore) Create(draft EventDraft) (entity.ScheduleEvent, error) {
	e := entity.ScheduleEvent{
		Title:       draft.Title,
		Description: draft.Description,
		StartTime:   draft.StartTime,
		EndTime:     draft.EndTime,
		AllDay:      draft.AllDay,
		Organizer:   draft.Organizer,
		Attendees:   append([]string(nil), draft.Attendees...),
		Location:    draft.Location,
		Category:    draft.Category,
		Priority:    draft.Priority,
		Status:      draft.Status,
		Notes:       draft.Notes,
	}
	if e.Priority == "" {
		e.Priority = entity.PriorityMedium
	}
	if e.Status == "" {
		e.Status = entity.StatusScheduled
	}
	if err := s.normalize(&e); err != nil {
		return entity.ScheduleEvent{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.opts.newID()
	e.CreatedAt = s.opts.stamp(0)
	e.UpdatedAt = e.CreatedAt
	if err := s.save(&e); err != nil {
		return entity.ScheduleEvent{}, err
	}
	s.events[e.ID] = &e
	return e.Clone(), nil
}

func (s *MemoryEventStore) Update(id string, patch EventPatch) (entity.ScheduleEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[id]
	if !ok {
		return entity.ScheduleEvent{}, ErrNotFound
	}
	next := cur.Clone()
	patch.apply(&next)
	if err := s.normalize(&next); err != nil {
		return entity.ScheduleEvent{}, err
	}
	next.UpdatedAt = s.opts.stamp(cur.UpdatedAt)

	if err := s.save(&next); err != nil {
		return entity.ScheduleEvent{}, err
	}
	s.events[id] = &next
	return next.Clone(), nil
}

// Delete removes the event and returns what was stored.
func (s *MemoryEventStore) Delete(id string) (entity.ScheduleEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[id]
	if !ok {
		return entity.ScheduleEvent{}, ErrNotFound
	}
	if s.persist != nil {
		if err := s.persist.Delete(id); err != nil {
			return entity.ScheduleEvent{}, fmt.Errorf("delete event %s: %w", id, err)
		}
	}
	delete(s.events, id)
	return cur.Clone(), nil
}

func (s *MemoryEventStore) Get(id string) (entity.ScheduleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return entity.ScheduleEvent{}, ErrNotFound
	}
	return e.Clone(), nil
}

// List returns events intersecting window (all events when nil), ordered by
// start time and then id.
func (s *MemoryEventStore) List(window *scheduling.Range) []entity.ScheduleEvent {
	s.mu.RLock()
	out := make([]entity.ScheduleEvent, 0, len(s.events))
	for _, e := range s.events {
		if window != nil && !scheduling.Overlaps(*window, scheduling.EventRange(e)) {
			continue
		}
		out = append(out, e.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.ScheduleEvent) int {
		return cmp.Or(cmp.Compare(a.StartTime, b.StartTime), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func (s *MemoryEventStore) save(e *entity.ScheduleEvent) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(e); err != nil {
		return fmt.Errorf("save event %s: %w", e.ID, err)
	}
	return nil
}

// normalize enforces the event invariants and fills derived fields.
func (s *MemoryEventStore) normalize(e *entity.ScheduleEvent) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return &scheduling.ValidationError{Field: "title", Message: "is required"}
	}
	t, ok := scheduling.TypeForCategory(e.Category)
	if !ok {
		return &scheduling.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", e.Category)}
	}
	e.Type = t
	if !scheduling.ValidPriority(e.Priority) {
		return &scheduling.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", e.Priority)}
	}
	if !scheduling.ValidStatus(e.Status) {
		return &scheduling.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", e.Status)}
	}

	if e.AllDay {
		r := scheduling.NormalizeAllDay(e.StartTime, e.EndTime, s.opts.loc)
		e.StartTime, e.EndTime = r.Start, r.End
		return nil
	}
	if e.EndTime <= e.StartTime {
		return &scheduling.ValidationError{Field: "end_time", Message: "must be after start_time"}
	}
	return nil
}

func (p EventPatch) apply(e *entity.ScheduleEvent) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.AllDay != nil {
		e.AllDay = *p.AllDay
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Attendees != nil {
		e.Attendees = append([]string(nil), (*p.Attendees)...)
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
}
