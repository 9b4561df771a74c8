// Package inventory implements remote inventory providers. This is part of
// the imperative shell - it reads live infrastructure state from cloud APIs
// so runtime rules can validate against machines outside the local engine.
package inventory

import (
	"context"

	coreinventory "github.com/stackpact/stackpact/internal/core/inventory"
)

// Provider observes one infrastructure backend, read-only. Providers never
// mutate remote state; the deployment path goes through a runtime adapter.
type Provider interface {
	// Snapshot returns the resources currently visible for the stack.
	Snapshot(ctx context.Context, stack string) (*coreinventory.Snapshot, error)
}

// Credentials carries the secrets a provider needs. Only the fields for the
// selected provider type are read.
type Credentials struct {
	// AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string

	// DigitalOcean and Hetzner
	APIToken string
}
