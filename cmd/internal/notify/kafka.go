package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"opsched/cmd/internal/domain/entity"
	"opsched/cmd/internal/utils"
	"time"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes one message per change, keyed by event id so every
// change to an event lands on the same partition.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		timeout: 5 * time.Second,
	}
}

type envelope struct {
	EventID    string       `json:"event_id"`
	EventType  Kind         `json:"event_type"`
	OccurredAt string       `json:"occurred_at"`
	Event      eventPayload `json:"event"`
}

type eventPayload struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	AllDay    bool            `json:"all_day"`
	Organizer string          `json:"organizer,omitempty"`
	Attendees []string        `json:"attendees,omitempty"`
	Category  entity.Category `json:"category"`
	Priority  entity.Priority `json:"priority"`
	Status    entity.Status   `json:"status"`
}

func (k *KafkaNotifier) Notify(ctx context.Context, change Change) error {
	msg, err := buildMessage(change)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for %s: %w", change.Kind, change.Event.ID, err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

func buildMessage(change Change) (kafka.Message, error) {
	e := change.Event
	env := envelope{
		EventID:    uuid.New().String(),
		EventType:  change.Kind,
		OccurredAt: utils.FormatEpoch(change.At),
		Event: eventPayload{
			ID:        e.ID,
			Title:     e.Title,
			StartTime: utils.FormatEpoch(e.StartTime),
			EndTime:   utils.FormatEpoch(e.EndTime),
			AllDay:    e.AllDay,
			Organizer: e.Organizer,
			Attendees: e.Attendees,
			Category:  e.Category,
			Priority:  e.Priority,
			Status:    e.Status,
		},
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.EventID)},
			{Key: "event_type", Value: []byte(change.Kind)},
		},
	}, nil
}
