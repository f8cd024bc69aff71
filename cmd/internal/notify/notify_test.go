package notify

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opsched/cmd/internal/domain/entity"
	"testing"
	"time"
)

type fakeWriter struct {
	msgs     []kafka.Message
	deadline bool
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type failing struct{ err error }

func (f failing) Notify(context.Context, Change) error { return f.err }

func change(kind Kind) Change {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return Change{
		Kind: kind,
		Event: entity.ScheduleEvent{
			ID:        "evt-1",
			Title:     "Patch servers",
			StartTime: start.UnixMilli(),
			EndTime:   start.Add(time.Hour).UnixMilli(),
			Organizer: "alice",
			Attendees: []string{"bob"},
			Category:  entity.CategoryITMaintenance,
			Priority:  entity.PriorityHigh,
			Status:    entity.StatusScheduled,
		},
		At: start.Add(-time.Hour).UnixMilli(),
	}
}

func TestKafkaNotifierPublishesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	k := &KafkaNotifier{writer: w, timeout: time.Second}

	require.NoError(t, k.Notify(context.Background(), change(EventUpdated)))
	require.Len(t, w.msgs, 1)
	assert.True(t, w.deadline, "publishing must be bounded by a timeout")

	msg := w.msgs[0]
	assert.Equal(t, "evt-1", string(msg.Key))

	var env map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "event.updated", env["event_type"])
	assert.Equal(t, "2026-01-05T08:00:00Z", env["occurred_at"])
	assert.NotEmpty(t, env["event_id"])

	ev := env["event"].(map[string]any)
	assert.Equal(t, "evt-1", ev["id"])
	assert.Equal(t, "2026-01-05T09:00:00Z", ev["start_time"])
	assert.Equal(t, "it-maintenance", ev["category"])

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "event.updated", headers["event_type"])
	assert.Equal(t, env["event_id"], headers["event_id"])

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

func TestKafkaNotifierWrapsWriteErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("no brokers")}
	k := &KafkaNotifier{writer: w, timeout: time.Second}

	err := k.Notify(context.Background(), change(EventDeleted))
	assert.ErrorIs(t, err, w.err)
	assert.Contains(t, err.Error(), "event.deleted")
}

func TestFanoutJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	w := &fakeWriter{}
	f := Fanout{LogNotifier{}, failing{boom}, &KafkaNotifier{writer: w, timeout: time.Second}}

	err := f.Notify(context.Background(), change(EventCreated))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, w.msgs, 1, "a failing notifier does not stop the others")

	assert.NoError(t, Fanout{LogNotifier{}}.Notify(context.Background(), change(EventCreated)))
}
