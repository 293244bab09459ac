package taskcomm

import (
	"errors"
	"fmt"
)

// Sentinel errors for construction and registry operations.
var (
	// ErrUnusable indicates an operation was attempted on a queue whose
	// construction failed (non-positive capacity).
	ErrUnusable = errors.New("queue is not usable")

	// ErrBadCapacity indicates a queue was declared with a non-positive
	// capacity.
	ErrBadCapacity = errors.New("queue capacity must be positive")

	// ErrTimeout indicates a blocking operation gave up waiting. Data
	// paths report timeouts through their boolean returns; this
	// sentinel carries the condition into span and log records.
	ErrTimeout = errors.New("operation timed out")
)

// RenderError wraps errors from diagnostics rendering.
type RenderError struct {
	// Entry is the name of the entry whose status line failed to write.
	Entry string
	// Err is the underlying sink error.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render status for %q: %v", e.Entry, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Err
}
