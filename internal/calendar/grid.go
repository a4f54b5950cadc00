// Package calendar computes the month grid shown to the user and keeps the
// client side view state.
package calendar

import (
	"iter"
	"slices"
	"time"

	"github.com/lomoval/personal-calendar/internal/storage"
)

const dayLayout = "2006-01-02"

// fetchSpan is how far past the reference date the view loads events.
const fetchSpan = 13

type Month struct {
	// First is midnight of the first day of the month in the reference location.
	First time.Time
	// Offset is the number of leading filler cells, 0 when the month starts on WeekStart.
	Offset          int
	DaysInMonth     int
	DaysInPrevMonth int
	WeekStart       time.Weekday

	events []storage.Event
}

type Cell struct {
	Date time.Time `json:"-"`
	Day  string    `json:"date"`
	// Filler cells belong to the previous month and are not interactive.
	Filler bool            `json:"filler"`
	Events []storage.Event `json:"events"`
}

type YearMonth struct {
	Year  int
	Month time.Month
}

func NewMonth(ref time.Time, weekStart time.Weekday, events []storage.Event) Month {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return Month{
		First:           first,
		Offset:          (int(first.Weekday()) - int(weekStart) + 7) % 7,
		DaysInMonth:     first.AddDate(0, 1, -1).Day(),
		DaysInPrevMonth: first.AddDate(0, 0, -1).Day(),
		WeekStart:       weekStart,
		events:          events,
	}
}

// Cells yields the leading filler days followed by one cell per day of the month.
func (m Month) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		prev := m.First.AddDate(0, -1, 0)
		for i := 0; i < m.Offset; i++ {
			date := time.Date(prev.Year(), prev.Month(), m.DaysInPrevMonth-m.Offset+i+1, 0, 0, 0, 0, prev.Location())
			if !yield(Cell{Date: date, Day: date.Format(dayLayout), Filler: true}) {
				return
			}
		}
		for day := 1; day <= m.DaysInMonth; day++ {
			date := time.Date(m.First.Year(), m.First.Month(), day, 0, 0, 0, 0, m.First.Location())
			if !yield(Cell{Date: date, Day: date.Format(dayLayout), Events: EventsOn(date, m.events)}) {
				return
			}
		}
	}
}

func (m Month) Collect() []Cell {
	return slices.Collect(m.Cells())
}

// EventsOn returns events whose [start day, end day] range contains date.
// Time of day is ignored.
func EventsOn(date time.Time, events []storage.Event) []storage.Event {
	day := date.Format(dayLayout)
	matched := make([]storage.Event, 0)
	for _, e := range events {
		if len(e.StartDate) < len(dayLayout) || len(e.EndDate) < len(dayLayout) {
			continue
		}
		if e.StartDate[:len(dayLayout)] <= day && day <= e.EndDate[:len(dayLayout)] {
			matched = append(matched, e)
		}
	}
	return matched
}

func Prev(ref time.Time) time.Time {
	return ref.AddDate(0, -1, 0)
}

func Next(ref time.Time) time.Time {
	return ref.AddDate(0, 1, 0)
}

// Today returns the first day of the month containing now.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// FetchMonths lists the months whose events are needed to show the period
// starting at ref.
func FetchMonths(ref time.Time) []YearMonth {
	end := ref.AddDate(0, 0, fetchSpan)
	months := []YearMonth{{Year: ref.Year(), Month: ref.Month()}}
	if end.Year() != ref.Year() || end.Month() != ref.Month() {
		months = append(months, YearMonth{Year: end.Year(), Month: end.Month()})
	}
	return months
}
