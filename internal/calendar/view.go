package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidTransition = errors.New("invalid view transition")

type State int

const (
	Idle State = iota
	Loading
	DialogOpen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case DialogOpen:
		return "dialog-open"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type DialogMode int

const (
	DialogNone DialogMode = iota
	DialogCreate
	DialogEdit
)

type trigger string

const (
	fetchStart    trigger = "fetch-start"
	fetchComplete trigger = "fetch-complete"
	dialogOpen    trigger = "dialog-open"
	dialogClose   trigger = "dialog-close"
)

var transitions = map[State]map[trigger]State{
	Idle:       {fetchStart: Loading, dialogOpen: DialogOpen},
	Loading:    {fetchComplete: Idle},
	DialogOpen: {dialogClose: Idle},
}

// Backend is the event API the view talks to.
type Backend interface {
	ListByMonth(ctx context.Context, year int, month time.Month) ([]storage.Event, error)
	CreateEvent(ctx context.Context, in app.EventInput) (storage.Event, error)
	UpdateEvent(ctx context.Context, id int64, in app.EventInput) (storage.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// View holds the state of a month calendar screen. Writes are applied to the
// local event list only after the backend confirmed them and the period was
// fetched again. View is not safe for concurrent use.
type View struct {
	backend   Backend
	now       func() time.Time
	weekStart time.Weekday

	state        State
	mode         DialogMode
	ref          time.Time
	events       []storage.Event
	selectedDate time.Time
	selected     *storage.Event
}

func NewView(backend Backend, weekStart time.Weekday, now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	return &View{
		backend:   backend,
		now:       now,
		weekStart: weekStart,
		ref:       Today(now()),
		events:    []storage.Event{},
	}
}

func (v *View) State() State             { return v.state }
func (v *View) Mode() DialogMode         { return v.mode }
func (v *View) Reference() time.Time     { return v.ref }
func (v *View) Events() []storage.Event  { return v.events }
func (v *View) SelectedDate() time.Time  { return v.selectedDate }
func (v *View) Selected() *storage.Event { return v.selected }

func (v *View) Month() Month {
	return NewMonth(v.ref, v.weekStart, v.events)
}

func (v *View) fire(t trigger) error {
	next, ok := transitions[v.state][t]
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, t, v.state)
	}
	v.state = next
	return nil
}

// Refresh loads the events of the current period. On failure the previous
// events are kept.
func (v *View) Refresh(ctx context.Context) error {
	if err := v.fire(fetchStart); err != nil {
		return err
	}
	defer v.fire(fetchComplete) //nolint:errcheck

	events := make([]storage.Event, 0)
	for _, ym := range FetchMonths(v.ref) {
		monthEvents, err := v.backend.ListByMonth(ctx, ym.Year, ym.Month)
		if err != nil {
			log.Errorf("failed to fetch events for %d-%02d: %v", ym.Year, ym.Month, err)
			return err
		}
		events = append(events, monthEvents...)
	}
	v.events = events
	return nil
}

func (v *View) PrevPeriod(ctx context.Context) error {
	return v.navigate(ctx, Prev(v.ref))
}

func (v *View) NextPeriod(ctx context.Context) error {
	return v.navigate(ctx, Next(v.ref))
}

func (v *View) Today(ctx context.Context) error {
	return v.navigate(ctx, Today(v.now()))
}

// GoTo shows the month containing date.
func (v *View) GoTo(ctx context.Context, date time.Time) error {
	return v.navigate(ctx, Today(date))
}

func (v *View) navigate(ctx context.Context, ref time.Time) error {
	if v.state != Idle {
		return fmt.Errorf("%w: navigate in state %s", ErrInvalidTransition, v.state)
	}
	v.ref = ref
	return v.Refresh(ctx)
}

// OpenCreate opens the dialog for a new event on date.
func (v *View) OpenCreate(date time.Time) error {
	if err := v.fire(dialogOpen); err != nil {
		return err
	}
	v.mode = DialogCreate
	v.selectedDate = date
	v.selected = nil
	return nil
}

func (v *View) OpenEdit(e storage.Event) error {
	if err := v.fire(dialogOpen); err != nil {
		return err
	}
	v.mode = DialogEdit
	v.selected = &e
	return nil
}

func (v *View) CloseDialog() error {
	if err := v.fire(dialogClose); err != nil {
		return err
	}
	v.mode = DialogNone
	v.selected = nil
	return nil
}

// Save creates or updates the event of the open dialog, closes the dialog and
// reloads the period. When the backend rejects the request the dialog stays open.
func (v *View) Save(ctx context.Context, in app.EventInput) (storage.Event, error) {
	if v.state != DialogOpen {
		return storage.Event{}, fmt.Errorf("%w: save in state %s", ErrInvalidTransition, v.state)
	}

	var (
		saved storage.Event
		err   error
	)
	if v.mode == DialogEdit {
		saved, err = v.backend.UpdateEvent(ctx, v.selected.ID, in)
	} else {
		saved, err = v.backend.CreateEvent(ctx, in)
	}
	if err != nil {
		log.Errorf("failed to save event: %v", err)
		return storage.Event{}, err
	}

	if err := v.CloseDialog(); err != nil {
		return saved, err
	}
	return saved, v.Refresh(ctx)
}

// Delete removes the event being edited.
func (v *View) Delete(ctx context.Context) error {
	if v.state != DialogOpen || v.mode != DialogEdit {
		return fmt.Errorf("%w: delete in state %s", ErrInvalidTransition, v.state)
	}
	if err := v.backend.DeleteEvent(ctx, v.selected.ID); err != nil {
		log.Errorf("failed to delete event: %v", err)
		return err
	}
	if err := v.CloseDialog(); err != nil {
		return err
	}
	return v.Refresh(ctx)
}
