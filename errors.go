package ctxrescue

import (
	"errors"
	"fmt"
)

// Sentinel errors for rescue operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingAPIKey indicates the selected analyzer provider has no credential.
	ErrMissingAPIKey = errors.New("missing API key for analyzer provider")

	// ErrUnknownProvider indicates an unrecognized analyzer provider.
	ErrUnknownProvider = errors.New("unknown analyzer provider")
)

// RescueError provides structured error context for rescue operations.
type RescueError struct {
	// Op is the operation that failed (e.g., "Analyze", "Rescue", "Generate")
	Op string

	// Err is the underlying error
	Err error

	// Context holds additional key-value pairs for debugging
	Context map[string]any
}

// Error returns a formatted error message.
func (e *RescueError) Error() string {
	msg := fmt.Sprintf("rescue %s failed", e.Op)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *RescueError) Unwrap() error {
	return e.Err
}

// NewRescueError creates a new RescueError with the given operation and
// underlying error.
func NewRescueError(op string, err error) *RescueError {
	return &RescueError{
		Op:      op,
		Err:     err,
		Context: make(map[string]any),
	}
}

// WithContext adds a key-value pair to the error context and returns the
// error for chaining.
func (e *RescueError) WithContext(key string, value any) *RescueError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WrapError wraps an error with operation context. If err is nil, returns nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewRescueError(op, err)
}
