package app

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the referenced event does not exist.
var ErrNotFound = errors.New("event not found")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field level problem of a request.
type ValidationError struct {
	Details []FieldError
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Details) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v.Details))
	for _, d := range v.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasField reports whether a problem was recorded for field.
func (v *ValidationError) HasField(field string) bool {
	if v == nil {
		return false
	}
	for _, d := range v.Details {
		if d.Field == field {
			return true
		}
	}
	return false
}

func (v *ValidationError) add(field, message string) {
	v.Details = append(v.Details, FieldError{Field: field, Message: message})
}

// InternalError wraps storage and connection failures. Its text is not meant
// for clients.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
