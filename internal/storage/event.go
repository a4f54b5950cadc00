package storage

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the naive local timestamp layout of start_date and end_date.
	DateLayout = "2006-01-02T15:04:05"
	// CreatedAtLayout is the layout of created_at, always in UTC.
	CreatedAtLayout = "2006-01-02 15:04:05"
)

type Event struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
	StartDate   string  `json:"start_date" db:"start_date"`
	EndDate     string  `json:"end_date" db:"end_date"`
	Color       string  `json:"color" db:"color"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
}

// MonthRange returns the [from, to) bounds of start_date for the given month.
// Naive timestamps sort lexicographically, so the bounds are plain strings.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.Format(DateLayout), first.AddDate(0, 1, 0).Format(DateLayout)
}

func NewCreatedAt(now time.Time) string {
	return now.UTC().Format(CreatedAtLayout)
}

func (e Event) String() string {
	return fmt.Sprintf("#%d %q [%s - %s]", e.ID, e.Title, e.StartDate, e.EndDate)
}
