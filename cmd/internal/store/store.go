package store

import (
	"errors"
	"github.com/google/uuid"
	"time"
)

var ErrNotFound = errors.New("not found")

type options struct {
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

type Option func(*options)

// WithLocation sets the zone used to snap all-day events onto calendar days.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		loc:   time.UTC,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stamp returns the current time in millis, strictly after prev.
func (o *options) stamp(prev int64) int64 {
	now := o.now().UTC().UnixMilli()
	if now <= prev {
		return prev + 1
	}
	return now
}
