package edl

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when the EDL has no shot events or an event
// lacks a required field.
var ErrMalformedInput = errors.New("malformed input")

// FieldError reports a required field that could not be decoded from an event.
type FieldError struct {
	Event string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("event %s: %s: %v", e.Event, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(event, field string) error {
	return &FieldError{Event: event, Field: field, Err: fmt.Errorf("%w: field not found", ErrMalformedInput)}
}
