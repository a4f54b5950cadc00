package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lomoval/personal-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Change describes a completed write. Deleted events carry only the ID.
type Change struct {
	Action string
	Event  storage.Event
}

type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

type App struct {
	Storage  storage.Storage
	notifier Notifier
}

type Option func(*App)

// WithNotifier makes the app report every successful write to n.
func WithNotifier(n Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

func New(storage storage.Storage, opts ...Option) *App {
	a := &App{Storage: storage}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseID converts a path id to an event id. Malformed ids map to 0, which
// never matches a stored event, so they surface as ErrNotFound.
func ParseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// ListByMonth returns events starting in the month ordered by start date.
// month may be zero padded.
func (a *App) ListByMonth(ctx context.Context, year, month string) ([]storage.Event, error) {
	y, m, err := ParseMonth(year, month)
	if err != nil {
		return nil, err
	}
	events, err := a.Storage.GetEventsForMonth(ctx, y, m)
	if err != nil {
		return nil, a.internal("list events", err)
	}
	return events, nil
}

func (a *App) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	e, err := a.Storage.GetEvent(ctx, id)
	if err != nil {
		return storage.Event{}, a.storageError("get event", err)
	}
	return e, nil
}

// CreateEvent validates in, stores it and returns the stored record.
func (a *App) CreateEvent(ctx context.Context, in EventInput) (storage.Event, error) {
	if err := ValidateEvent(in); err != nil {
		return storage.Event{}, err
	}

	e := in.toEvent()
	if err := a.Storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, a.storageError("create event", err)
	}
	created, err := a.Storage.GetEvent(ctx, e.ID)
	if err != nil {
		return storage.Event{}, a.internal("read created event", err)
	}

	a.notify(ctx, Change{Action: ActionCreated, Event: created})
	return created, nil
}

// UpdateEvent validates in before looking the event up, so a malformed
// payload is reported even for an unknown id.
func (a *App) UpdateEvent(ctx context.Context, id int64, in EventInput) (storage.Event, error) {
	if err := ValidateEvent(in); err != nil {
		return storage.Event{}, err
	}

	updated, err := a.Storage.UpdateEvent(ctx, id, in.toEvent())
	if err != nil {
		return storage.Event{}, a.storageError("update event", err)
	}

	a.notify(ctx, Change{Action: ActionUpdated, Event: updated})
	return updated, nil
}

func (a *App) RemoveEvent(ctx context.Context, id int64) error {
	if err := a.Storage.RemoveEvent(ctx, id); err != nil {
		return a.storageError("remove event", err)
	}

	a.notify(ctx, Change{Action: ActionDeleted, Event: storage.Event{ID: id}})
	return nil
}

func (a *App) storageError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFoundEvent):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, storage.ErrIncorrectEventTime):
		return &ValidationError{Details: []FieldError{{Field: "end_date", Message: MsgEndBeforeStart}}}
	default:
		return a.internal(op, err)
	}
}

func (a *App) internal(op string, err error) error {
	log.Errorf("failed to %s: %v", op, err)
	return &InternalError{Op: op, Err: err}
}

func (a *App) notify(ctx context.Context, change Change) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, change); err != nil {
		log.WithField("action", change.Action).WithField("id", change.Event.ID).
			Warnf("failed to publish event change: %v", err)
	}
}
