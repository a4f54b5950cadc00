package ical

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/lomoval/personal-calendar/internal/storage"
)

const (
	productID = "-//lomoval//personal-calendar//EN"
	// Floating local time, the iCalendar form of a naive timestamp.
	floatingLayout = "20060102T150405"
	uidDomain      = "personal-calendar"
)

// Export renders events as an iCalendar document named name.
func Export(name string, events []storage.Event, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, e := range events {
		start, err := time.Parse(storage.DateLayout, e.StartDate)
		if err != nil {
			return "", fmt.Errorf("event %d has incorrect start date: %w", e.ID, err)
		}
		end, err := time.Parse(storage.DateLayout, e.EndDate)
		if err != nil {
			return "", fmt.Errorf("event %d has incorrect end date: %w", e.ID, err)
		}

		ev := cal.AddEvent(fmt.Sprintf("%d@%s", e.ID, uidDomain))
		ev.SetDtStampTime(now)
		ev.SetSummary(e.Title)
		if e.Description != nil && *e.Description != "" {
			ev.SetDescription(*e.Description)
		}
		ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(floatingLayout))
		ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(floatingLayout))
		ev.SetProperty(ics.ComponentProperty("COLOR"), e.Color)
		if created, err := time.Parse(storage.CreatedAtLayout, e.CreatedAt); err == nil {
			ev.SetCreatedTime(created)
		}
	}
	return cal.Serialize(), nil
}
