// Package compose parses rendered compose-shaped artifacts into the typed
// view the policy validator consumes. This is part of the Functional Core -
// all functions are pure with no I/O.
package compose

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyInput indicates an empty artifact body.
	ErrEmptyInput = errors.New("artifact is empty")

	// ErrInvalidYAML indicates the artifact is not valid YAML.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrNoServices indicates an artifact without any service definition.
	ErrNoServices = errors.New("artifact must define at least one service")

	// ErrServiceNoImage indicates a service without an image reference.
	// Rendered artifacts are deploy-ready; build contexts have no place here.
	ErrServiceNoImage = errors.New("service must have an image")
)

// ParseError wraps parse failures with context about where parsing failed.
type ParseError struct {
	Field   string // e.g., "services.web"
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
