package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lomoval/personal-calendar/internal/storage"
	"github.com/lomoval/personal-calendar/internal/validator"
)

const (
	DefaultColor = "#1976d2"

	MsgEndBeforeStart = "End date must be after start date"
)

// EventInput is the client supplied part of an event.
type EventInput struct {
	Title       string  `json:"title" validate:"required|maxlen:100"`
	Description *string `json:"description,omitempty"`
	StartDate   string  `json:"start_date" validate:"required|regexp:^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}$"`
	EndDate     string  `json:"end_date" validate:"required|regexp:^\\d{4}-\\d{2}-\\d{2}T\\d{2}:\\d{2}:\\d{2}$"`
	Color       *string `json:"color,omitempty" validate:"regexp:^#[0-9a-fA-F]{6}$"`
}

type monthParams struct {
	Year  string `json:"year" validate:"regexp:^\\d{4}$"`
	Month string `json:"month" validate:"regexp:^(0?[1-9]|1[0-2])$"`
}

var formats = map[string]string{
	"start_date": "YYYY-MM-DDTHH:MM:SS",
	"end_date":   "YYYY-MM-DDTHH:MM:SS",
	"color":      "#RRGGBB",
	"year":       "YYYY",
	"month":      "1-12",
}

// ValidateEvent checks every field of in and the order of its dates.
// It returns *ValidationError listing all problems, or nil.
func ValidateEvent(in EventInput) error {
	vErr := &ValidationError{}
	if err := collect(vErr, in); err != nil {
		return err
	}

	if !vErr.HasField("start_date") && !vErr.HasField("end_date") {
		start, startErr := time.Parse(storage.DateLayout, in.StartDate)
		end, endErr := time.Parse(storage.DateLayout, in.EndDate)
		if startErr != nil {
			vErr.add("start_date", "start_date is not a valid date")
		}
		if endErr != nil {
			vErr.add("end_date", "end_date is not a valid date")
		}
		if startErr == nil && endErr == nil && !end.After(start) {
			vErr.add("end_date", MsgEndBeforeStart)
		}
	}

	if len(vErr.Details) == 0 {
		return nil
	}
	return vErr
}

// ParseMonth validates year and month path parameters.
func ParseMonth(year, month string) (int, time.Month, error) {
	vErr := &ValidationError{}
	if err := collect(vErr, monthParams{Year: year, Month: month}); err != nil {
		return 0, 0, err
	}
	if len(vErr.Details) > 0 {
		return 0, 0, vErr
	}
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	return y, time.Month(m), nil
}

// collect runs the tag validator and appends its findings to vErr.
func collect(vErr *ValidationError, v interface{}) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field, message(fe))
	}
	return nil
}

func message(fe validator.ValidationError) string {
	switch {
	case errors.Is(fe.Err, validator.ErrValidateRequired):
		return fe.Field + " is required"
	case errors.Is(fe.Err, validator.ErrValidateTooLong):
		return fe.Field + " is too long"
	case errors.Is(fe.Err, validator.ErrValidateNotMatchRegexp):
		if format, ok := formats[fe.Field]; ok {
			return fmt.Sprintf("invalid %s format, expected %s", fe.Field, format)
		}
	}
	return fe.Error()
}

func (in EventInput) toEvent() storage.Event {
	e := storage.Event{
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Color:       DefaultColor,
	}
	if in.Color != nil {
		e.Color = *in.Color
	}
	return e
}
