package bazel

import (
	"errors"
	"fmt"
)

// GraphUnavailableError indicates that the Bazel query engine could not
// answer a query: the process exited non-zero, the binary was unreachable,
// or the queried file is not tracked by the build graph.
//
// This is an expected, recoverable condition for per-file owner lookups
// (untracked files such as docs or CI configs) and callers are expected to
// check for it with IsGraphUnavailable or errors.As rather than treating it
// as fatal.
type GraphUnavailableError struct {
	// Expression is the query expression that failed.
	Expression string
	// Stderr holds the diagnostic output of the query engine, if any.
	Stderr string
	// Cause is the underlying process error.
	Cause error
}

// Error returns the error message
func (e *GraphUnavailableError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("graph engine unavailable for query %q: %s", e.Expression, e.Stderr)
	}
	return fmt.Sprintf("graph engine unavailable for query %q: %v", e.Expression, e.Cause)
}

// Unwrap returns the underlying process error
func (e *GraphUnavailableError) Unwrap() error {
	return e.Cause
}

// IsGraphUnavailable checks if an error is a GraphUnavailableError
func IsGraphUnavailable(err error) bool {
	var gue *GraphUnavailableError
	return errors.As(err, &gue)
}
