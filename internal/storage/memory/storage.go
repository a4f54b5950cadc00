package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lomoval/personal-calendar/internal/storage"
)

type Storage struct {
	mu    sync.RWMutex
	data  map[int64]storage.Event
	idSeq int64
	now   func() time.Time
}

func New() *Storage {
	return &Storage{data: make(map[int64]storage.Event), now: time.Now}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	if e.EndDate <= e.StartDate {
		return fmt.Errorf("event end date should be after start date: %w", storage.ErrIncorrectEventTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.idSeq++
	e.ID = s.idSeq
	e.CreatedAt = storage.NewCreatedAt(s.now())
	s.data[e.ID] = copyEvent(*e)
	return nil
}

func (s *Storage) GetEvent(_ context.Context, id int64) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return copyEvent(e), nil
}

func (s *Storage) UpdateEvent(_ context.Context, id int64, e storage.Event) (storage.Event, error) {
	if e.EndDate <= e.StartDate {
		return storage.Event{}, fmt.Errorf("event end date should be after start date: %w", storage.ErrIncorrectEventTime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	e.ID = id
	e.CreatedAt = existing.CreatedAt
	s.data[id] = copyEvent(e)
	return copyEvent(e), nil
}

func (s *Storage) RemoveEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("failed to remove event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.data, id)
	return nil
}

func (s *Storage) GetEventsForMonth(_ context.Context, year int, month time.Month) ([]storage.Event, error) {
	from, to := storage.MonthRange(year, month)
	return s.selectByRange(from, to), nil
}

func (s *Storage) CountEvents(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Select by start date in range [from:to).
func (s *Storage) selectByRange(from string, to string) []storage.Event {
	events := make([]storage.Event, 0)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, event := range s.data {
		if event.StartDate >= from && event.StartDate < to {
			events = append(events, copyEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartDate == events[j].StartDate {
			return events[i].ID < events[j].ID
		}
		return events[i].StartDate < events[j].StartDate
	})
	return events
}

func copyEvent(e storage.Event) storage.Event {
	if e.Description != nil {
		d := *e.Description
		e.Description = &d
	}
	return e
}
