package store

import (
	"context"
	"time"

	"github.com/stackpact/stackpact/internal/core/pipeline"
	"github.com/stackpact/stackpact/internal/core/policy"
)

// =============================================================================
// Store Interface
// =============================================================================

// RunRecord is a persisted pipeline run outcome.
type RunRecord struct {
	ID          string
	Stack       string
	Environment string
	State       pipeline.State
	Violations  []policy.Violation
	Applied     bool
	CreatedAt   time.Time
}

// Store defines the persistence interface for run history.
type Store interface {
	// RecordRun persists one completed run.
	RecordRun(ctx context.Context, record *RunRecord) error

	// GetRun returns a run by ID.
	GetRun(ctx context.Context, id string) (*RunRecord, error)

	// ListRuns returns runs for a stack, newest first.
	ListRuns(ctx context.Context, stack string, opts ListOptions) ([]RunRecord, error)

	// LastRun returns the most recent run for a stack.
	LastRun(ctx context.Context, stack string) (*RunRecord, error)

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
