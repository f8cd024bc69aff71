// Package notify carries event-store changes to whatever delivers notifications.
// Delivery itself (email, reminders, escalation) lives outside this service.
package notify

import (
	"context"
	"errors"
	"github.com/labstack/gommon/log"
	"opsched/cmd/internal/domain/entity"
)

type Kind string

const (
	EventCreated Kind = "event.created"
	EventUpdated Kind = "event.updated"
	EventDeleted Kind = "event.deleted"
)

type Change struct {
	Kind  Kind
	Event entity.ScheduleEvent
	At    int64
}

// Notifier is invoked after a store mutation has been committed.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, change Change) error {
	log.Infof("%s id=%s title=%q", change.Kind, change.Event.ID, change.Event.Title)
	return nil
}

// Fanout calls every notifier and joins their errors.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, change Change) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
