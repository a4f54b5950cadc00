package memorystorage

import (
	"context"
	"testing"
	"time"

	"github.com/lomoval/personal-calendar/internal/storage"
	"github.com/stretchr/testify/require"
)

func newEvent(title, start, end string) storage.Event {
	return storage.Event{Title: title, StartDate: start, EndDate: end, Color: "#1976d2"}
}

func TestStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("add event", func(t *testing.T) {
		s := New()
		s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
		e := newEvent("test", "2024-03-05T10:00:00", "2024-03-05T11:00:00")

		require.NoError(t, s.AddEvent(ctx, &e))
		require.Equal(t, int64(1), e.ID)
		require.Equal(t, "2024-03-01 12:30:00", e.CreatedAt)

		got, err := s.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, e, got)
	})

	t.Run("update event", func(t *testing.T) {
		s := New()
		e := newEvent("test", "2024-03-05T10:00:00", "2024-03-05T11:00:00")
		require.NoError(t, s.AddEvent(ctx, &e))

		desc := "updated description"
		upd := newEvent("updated", "2024-04-01T09:00:00", "2024-04-02T09:00:00")
		upd.Description = &desc

		got, err := s.UpdateEvent(ctx, e.ID, upd)
		require.NoError(t, err)
		require.Equal(t, e.ID, got.ID)
		require.Equal(t, e.CreatedAt, got.CreatedAt)
		require.Equal(t, "updated", got.Title)
		require.Equal(t, &desc, got.Description)

		events, err := s.GetEventsForMonth(ctx, 2024, time.April)
		require.NoError(t, err)
		require.Equal(t, []storage.Event{got}, events)
	})

	t.Run("delete event", func(t *testing.T) {
		s := New()
		e := newEvent("test", "2024-03-05T10:00:00", "2024-03-05T11:00:00")
		require.NoError(t, s.AddEvent(ctx, &e))

		require.NoError(t, s.RemoveEvent(ctx, e.ID))
		require.ErrorIs(t, s.RemoveEvent(ctx, e.ID), storage.ErrNotFoundEvent)

		count, err := s.CountEvents(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("list by month", func(t *testing.T) {
		s := New()
		for _, e := range []storage.Event{
			newEvent("april", "2024-04-01T00:00:00", "2024-04-01T01:00:00"),
			newEvent("late", "2024-03-31T23:00:00", "2024-04-01T01:00:00"),
			newEvent("early", "2024-03-01T00:00:00", "2024-03-01T01:00:00"),
			newEvent("february", "2024-02-29T10:00:00", "2024-03-02T10:00:00"),
			newEvent("middle", "2024-03-15T08:00:00", "2024-03-15T09:00:00"),
		} {
			e := e
			require.NoError(t, s.AddEvent(ctx, &e))
		}

		events, err := s.GetEventsForMonth(ctx, 2024, time.March)
		require.NoError(t, err)
		titles := make([]string, 0, len(events))
		for _, e := range events {
			titles = append(titles, e.Title)
		}
		require.Equal(t, []string{"early", "middle", "late"}, titles)

		events, err = s.GetEventsForMonth(ctx, 2024, time.May)
		require.NoError(t, err)
		require.NotNil(t, events)
		require.Empty(t, events)
	})
}

func TestStorageNegativeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("incorrect event time", func(t *testing.T) {
		s := New()
		e := newEvent("test", "2024-03-05T10:00:00", "2024-03-05T10:00:00")
		require.ErrorIs(t, s.AddEvent(ctx, &e), storage.ErrIncorrectEventTime)
	})

	t.Run("update not exist event", func(t *testing.T) {
		s := New()
		_, err := s.UpdateEvent(ctx, 42, newEvent("test", "2024-03-05T10:00:00", "2024-03-05T11:00:00"))
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("get not exist event", func(t *testing.T) {
		s := New()
		_, err := s.GetEvent(ctx, 42)
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("stored description is not shared", func(t *testing.T) {
		s := New()
		desc := "original"
		e := newEvent("test", "2024-03-05T10:00:00", "2024-03-05T11:00:00")
		e.Description = &desc
		require.NoError(t, s.AddEvent(ctx, &e))

		desc = "changed outside"
		got, err := s.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		require.Equal(t, "original", *got.Description)
	})
}
