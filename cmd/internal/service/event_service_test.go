package service

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"opsched/cmd/internal/notify"
	"opsched/cmd/internal/store"
	"opsched/cmd/internal/utils/apierror"
	"opsched/cmd/internal/utils/validators"
	"sync"
	"testing"
)

// recorder captures changes and checks they are only seen once committed.
type recorder struct {
	mu      sync.Mutex
	store   *store.MemoryEventStore
	changes []notify.Change
	visible []bool
	err     error
}

func (r *recorder) Notify(_ context.Context, c notify.Change) error {
	_, err := r.store.Get(c.Event.ID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	r.visible = append(r.visible, err == nil)
	return r.err
}

func (r *recorder) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Kind
	}
	return out
}

func newEventService(t *testing.T) (*DefaultEventService, *recorder) {
	t.Helper()
	st := store.NewEventStore(nil)
	rec := &recorder{store: st}
	return NewEventService(st, rec, validators.New()), rec
}

func meeting(title, start, end string) *CreateEventRequest {
	return &CreateEventRequest{
		Title:     title,
		StartTime: start,
		EndTime:   end,
		Organizer: "alice",
		Attendees: []string{"bob"},
		Category:  "meeting",
	}
}

func details(t *testing.T, apierr apierror.ErrorResponse) map[string]string {
	t.Helper()
	simple, ok := apierr.(*apierror.Simple)
	require.True(t, ok, "expected *apierror.Simple, got %T", apierr)
	return simple.Details
}

func TestCreateEventReportsConflicts(t *testing.T) {
	svc, rec := newEventService(t)
	ctx := context.Background()

	a, apierr := svc.CreateEvent(ctx, meeting("A", "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"))
	require.Nil(t, apierr)
	assert.Empty(t, a.Conflicts)
	assert.Equal(t, "meeting", a.Event.Type)
	assert.Equal(t, "medium", a.Event.Priority)
	assert.Equal(t, "scheduled", a.Event.Status)

	b, apierr := svc.CreateEvent(ctx, meeting("B", "2026-01-05T09:30:00Z", "2026-01-05T10:30:00Z"))
	require.Nil(t, apierr)
	require.Len(t, b.Conflicts, 1)
	assert.Equal(t, a.Event.ID, b.Conflicts[0].ID)

	c, apierr := svc.CreateEvent(ctx, meeting("C", "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z"))
	require.Nil(t, apierr)
	require.Len(t, c.Conflicts, 1)
	assert.Equal(t, b.Event.ID, c.Conflicts[0].ID, "back-to-back with A is not a conflict")

	assert.Equal(t, []notify.Kind{notify.EventCreated, notify.EventCreated, notify.EventCreated}, rec.kinds())
	assert.Equal(t, []bool{true, true, true}, rec.visible)
}

func TestCreateEventValidation(t *testing.T) {
	svc, rec := newEventService(t)
	ctx := context.Background()

	cases := map[string]struct {
		req   *CreateEventRequest
		field string
	}{
		"missing title":    {meeting("   ", "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"), "title"},
		"bad category":     {&CreateEventRequest{Title: "x", StartTime: "2026-01-05T09:00:00Z", EndTime: "2026-01-05T10:00:00Z", Category: "party"}, "category"},
		"bad timestamp":    {meeting("x", "monday morning", "2026-01-05T10:00:00Z"), "start_time"},
		"end before start": {meeting("x", "2026-01-05T10:00:00Z", "2026-01-05T09:00:00Z"), "end_time"},
		"missing end":      {meeting("x", "2026-01-05T10:00:00Z", ""), "end_time"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, apierr := svc.CreateEvent(ctx, tc.req)
			require.NotNil(t, apierr)
			assert.Equal(t, http.StatusBadRequest, apierr.Code())
			assert.Contains(t, details(t, apierr), tc.field)
		})
	}
	assert.Empty(t, rec.kinds(), "nothing committed, nothing notified")
}

func TestCreateAllDayEventWithoutEnd(t *testing.T) {
	svc, _ := newEventService(t)

	req := meeting("Offsite", "2026-01-05T13:00:00Z", "")
	req.AllDay = true
	resp, apierr := svc.CreateEvent(context.Background(), req)
	require.Nil(t, apierr)
	assert.Equal(t, "2026-01-05T00:00:00Z", resp.Event.StartTime)
	assert.Equal(t, "2026-01-06T00:00:00Z", resp.Event.EndTime)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	svc, rec := newEventService(t)
	ctx := context.Background()

	created, apierr := svc.CreateEvent(ctx, meeting("A", "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"))
	require.Nil(t, apierr)
	id := created.Event.ID

	title := "A (moved)"
	start := "2026-01-05T11:00:00Z"
	end := "2026-01-05T12:00:00Z"
	updated, apierr := svc.UpdateEvent(ctx, id, &UpdateEventRequest{Title: &title, StartTime: &start, EndTime: &end})
	require.Nil(t, apierr)
	assert.Equal(t, title, updated.Event.Title)
	assert.Equal(t, start, updated.Event.StartTime)
	assert.Equal(t, created.Event.Attendees, updated.Event.Attendees)

	_, apierr = svc.UpdateEvent(ctx, "missing", &UpdateEventRequest{Title: &title})
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())

	require.Nil(t, svc.DeleteEvent(ctx, id))
	apierr = svc.DeleteEvent(ctx, id)
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())

	_, apierr = svc.GetEvent(id)
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusNotFound, apierr.Code())

	assert.Equal(t, []notify.Kind{notify.EventCreated, notify.EventUpdated, notify.EventDeleted}, rec.kinds())
}

func TestNotifierFailureKeepsMutation(t *testing.T) {
	svc, rec := newEventService(t)
	rec.err = errors.New("broker down")

	resp, apierr := svc.CreateEvent(context.Background(), meeting("A", "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"))
	require.Nil(t, apierr)

	got, apierr := svc.GetEvent(resp.Event.ID)
	require.Nil(t, apierr)
	assert.Equal(t, "A", got.Title)
}

func TestListEventsAndConflicts(t *testing.T) {
	svc, _ := newEventService(t)
	ctx := context.Background()

	for _, r := range []*CreateEventRequest{
		meeting("A", "2026-01-05T09:00:00Z", "2026-01-05T10:00:00Z"),
		meeting("B", "2026-01-06T09:00:00Z", "2026-01-06T10:00:00Z"),
	} {
		_, apierr := svc.CreateEvent(ctx, r)
		require.Nil(t, apierr)
	}

	all, apierr := svc.ListEvents("", "")
	require.Nil(t, apierr)
	assert.Len(t, all, 2)

	monday, apierr := svc.ListEvents("2026-01-05T00:00:00Z", "2026-01-06T00:00:00Z")
	require.Nil(t, apierr)
	require.Len(t, monday, 1)
	assert.Equal(t, "A", monday[0].Title)

	_, apierr = svc.ListEvents("2026-01-05T00:00:00Z", "")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())

	found, apierr := svc.FindConflicts("2026-01-05T09:30:00Z", "2026-01-05T09:45:00Z", "")
	require.Nil(t, apierr)
	require.Len(t, found, 1)

	found, apierr = svc.FindConflicts("2026-01-05T09:30:00Z", "2026-01-05T09:45:00Z", found[0].ID)
	require.Nil(t, apierr)
	assert.Empty(t, found)

	_, apierr = svc.FindConflicts("2026-01-05T10:00:00Z", "2026-01-05T09:00:00Z", "")
	require.NotNil(t, apierr)
	assert.Equal(t, http.StatusBadRequest, apierr.Code())
}
