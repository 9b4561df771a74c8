package identity

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidIdentity indicates a missing or malformed stack token or
	// domain suffix.
	ErrInvalidIdentity = errors.New("invalid stack identity")

	// ErrDerivedFieldOverridden indicates a caller supplied a value for a
	// derived field that conflicts with the computed value.
	ErrDerivedFieldOverridden = errors.New("derived field overridden")

	// ErrUnknownEnvironment indicates an environment outside the known tiers.
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// IdentityError wraps identity resolution failures with the field at fault.
type IdentityError struct {
	Field   string // e.g., "STACK", "APP_HOST"
	Message string
	Err     error
}

func (e *IdentityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// NewIdentityError creates a new IdentityError.
func NewIdentityError(field, message string, err error) *IdentityError {
	return &IdentityError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
