package render

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyTemplate indicates a template with no content.
	ErrEmptyTemplate = errors.New("template is empty")

	// ErrUnresolvedPlaceholder indicates a placeholder with no binding key.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

// RenderError wraps rendering failures with the template and the placeholder
// names at fault.
type RenderError struct {
	Template     string
	Placeholders []string
	Err          error
}

func (e *RenderError) Error() string {
	if len(e.Placeholders) > 0 {
		return fmt.Sprintf("%s: unresolved placeholders: %s", e.Template, strings.Join(e.Placeholders, ", "))
	}
	return fmt.Sprintf("%s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError.
func NewRenderError(template string, placeholders []string, err error) *RenderError {
	return &RenderError{
		Template:     template,
		Placeholders: placeholders,
		Err:          err,
	}
}
