package bep

import (
	"errors"
	"fmt"
)

// EventSourceError indicates the build-event log could not be opened or read
// at all. This is fatal to the analysis: without the log there is nothing to
// compute. Individual malformed lines never produce this error; they are
// counted and skipped instead.
type EventSourceError struct {
	Path  string
	Cause error
}

// Error returns the error message
func (e *EventSourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cannot read build-event log %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("cannot read build-event stream: %v", e.Cause)
}

// Unwrap returns the underlying I/O error
func (e *EventSourceError) Unwrap() error {
	return e.Cause
}

// IsEventSourceError checks if an error is an EventSourceError
func IsEventSourceError(err error) bool {
	var ese *EventSourceError
	return errors.As(err, &ese)
}
