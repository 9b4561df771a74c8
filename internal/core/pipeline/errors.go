package pipeline

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrApplyTimedOut indicates the delegated apply exceeded the
	// caller-supplied timeout. No automatic rollback is attempted.
	ErrApplyTimedOut = errors.New("apply timed out")

	// ErrNoAdapter indicates an apply was requested without a runtime
	// adapter configured.
	ErrNoAdapter = errors.New("no runtime adapter configured")
)

// ApplyError wraps a delegated runtime failure. The adapter's error is
// surfaced verbatim, never masked or reinterpreted.
type ApplyError struct {
	Adapter string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply via %s: %v", e.Adapter, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewApplyError creates a new ApplyError.
func NewApplyError(adapter string, err error) *ApplyError {
	return &ApplyError{Adapter: adapter, Err: err}
}
