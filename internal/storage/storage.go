package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFoundEvent      = errors.New("event not found")
	ErrIncorrectEventTime = errors.New("incorrect event time")
)

type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	// AddEvent stores e, assigning its ID and CreatedAt.
	AddEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, id int64) (Event, error)
	// UpdateEvent replaces the mutable fields of the event with id and returns the stored row.
	UpdateEvent(ctx context.Context, id int64, e Event) (Event, error)
	RemoveEvent(ctx context.Context, id int64) error
	// GetEventsForMonth returns events starting in the month ordered by start date.
	GetEventsForMonth(ctx context.Context, year int, month time.Month) ([]Event, error)
	CountEvents(ctx context.Context) (int, error)
}
