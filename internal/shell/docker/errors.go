package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrConnectionFailed  = errors.New("docker connection failed")
	ErrContainerNotFound = errors.New("container not found")
	ErrNotOwned          = errors.New("resource exists but is not owned by this stack")
)

// EngineError wraps Docker engine failures with operation context.
type EngineError struct {
	Op      string // Operation that failed
	Entity  string // Entity type (container, network, volume)
	Name    string // Entity name if applicable
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.Name, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError.
func NewEngineError(op, entity, name, message string, err error) *EngineError {
	return &EngineError{
		Op:      op,
		Entity:  entity,
		Name:    name,
		Message: message,
		Err:     err,
	}
}
