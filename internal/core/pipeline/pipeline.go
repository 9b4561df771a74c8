// Package pipeline sequences resolve, render, validate, and the gated apply
// for one deployment run. The core stays side-effect-free until the final
// apply step, which is delegated entirely to an injected RuntimeAdapter.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stackpact/stackpact/internal/core/binding"
	"github.com/stackpact/stackpact/internal/core/compose"
	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/inventory"
	"github.com/stackpact/stackpact/internal/core/policy"
	"github.com/stackpact/stackpact/internal/core/render"
)

// =============================================================================
// States
// =============================================================================

// State is a terminal or transitional pipeline state.
type State string

const (
	StateResolving  State = "resolving"
	StateRendering  State = "rendering"
	StateValidating State = "validating"
	StateApplying   State = "applying"

	// StateFailed is the terminal state for configuration defects and policy
	// violations: fix the config.
	StateFailed State = "failed"

	// StateBlocked is the terminal state for a closed production gate: get
	// authorization. Deliberately distinct from StateFailed.
	StateBlocked State = "blocked"

	// StateDone is the terminal success state.
	StateDone State = "done"
)

// =============================================================================
// Request / Result
// =============================================================================

// Request describes one deployment run. It is immutable once validation
// begins and discarded after the run completes.
type Request struct {
	// RawInputs is the flat binding input mapping (STACK, domain keys,
	// application keys).
	RawInputs map[string]string

	// Environment is the target tier.
	Environment identity.Environment

	// Templates is the artifact template set for the target runtime.
	Templates []render.ArtifactTemplate

	// WantsApply requests the apply step after a clean validation.
	WantsApply bool

	// ApplyTimeout bounds the delegated apply call. Zero means no bound.
	ApplyTimeout time.Duration
}

// Result is the outcome of one run.
type Result struct {
	State      State                    `json:"state"`
	Identity   identity.StackIdentity   `json:"identity"`
	Rendered   []render.RenderedArtifact `json:"rendered,omitempty"`
	Violations []policy.Violation       `json:"violations,omitempty"`
	Applied    bool                     `json:"applied"`
}

// =============================================================================
// Collaborator Capabilities
// =============================================================================

// RuntimeAdapter applies rendered artifacts to a target runtime. The core
// never embeds runtime-specific logic; new target runtimes implement this
// interface.
type RuntimeAdapter interface {
	// Name identifies the adapter, e.g. "docker".
	Name() string

	// Apply applies the artifact set as a single synchronous unit. Rollback,
	// if any, is the adapter's responsibility.
	Apply(ctx context.Context, id identity.StackIdentity, artifacts []render.RenderedArtifact) error
}

// InventorySource observes the live runtime, read-only.
type InventorySource interface {
	Snapshot(ctx context.Context, stack string) (*inventory.Snapshot, error)
}

// GateReader reads the external production authorization toggle.
type GateReader interface {
	Open() (bool, error)
}

// =============================================================================
// Runner
// =============================================================================

// Runner executes deployment runs. All collaborators are injected; a nil
// Inventory skips runtime-state observation, a nil Gate reads as closed.
type Runner struct {
	Validator *policy.Validator
	Adapter   RuntimeAdapter
	Inventory InventorySource
	Gate      GateReader
	Logger    *slog.Logger
}

// Run executes one request:
// resolve -> render -> validate -> (gated) apply.
//
// Resolver and renderer failures return an error with StateFailed. Policy
// violations return a nil error with StateFailed and the full violation list;
// a closed production gate alone returns StateBlocked. Apply failures return
// an ApplyError verbatim from the adapter.
//
// Re-running an unchanged request renders a byte-identical artifact set.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// RESOLVING
	id, err := identity.Resolve(req.RawInputs, req.Environment)
	if err != nil {
		return Result{State: StateFailed}, err
	}
	b := binding.Build(id, req.RawInputs)
	logger.Debug("identity resolved", "stack", id.Stack, "app_host", id.AppHost)

	// RENDERING
	artifacts, err := render.RenderSet(req.Templates, b.Values())
	if err != nil {
		return Result{State: StateFailed, Identity: id}, err
	}

	specs, err := parseComposeArtifacts(artifacts)
	if err != nil {
		return Result{State: StateFailed, Identity: id, Rendered: artifacts}, err
	}

	// VALIDATING
	gateOpen := false
	if r.Gate != nil {
		gateOpen, err = r.Gate.Open()
		if err != nil {
			return Result{State: StateFailed, Identity: id, Rendered: artifacts}, err
		}
	}

	var snapshot *inventory.Snapshot
	if req.WantsApply && r.Inventory != nil {
		snapshot, err = r.Inventory.Snapshot(ctx, id.Stack)
		if err != nil {
			return Result{State: StateFailed, Identity: id, Rendered: artifacts}, err
		}
	}

	validator := r.Validator
	if validator == nil {
		validator = policy.DefaultValidator()
	}
	violations := validator.Validate(policy.Input{
		Binding:    b,
		Artifacts:  specs,
		Inventory:  snapshot,
		WantsApply: req.WantsApply,
		GateOpen:   gateOpen,
	})

	if len(violations) > 0 {
		state := StateFailed
		if onlyGateViolations(violations) {
			state = StateBlocked
		}
		logger.Info("validation finished", "state", string(state), "violations", len(violations))
		return Result{
			State:      state,
			Identity:   id,
			Rendered:   artifacts,
			Violations: violations,
		}, nil
	}

	if !req.WantsApply {
		return Result{State: StateDone, Identity: id, Rendered: artifacts}, nil
	}

	// APPLYING (delegated)
	if r.Adapter == nil {
		return Result{State: StateFailed, Identity: id, Rendered: artifacts}, ErrNoAdapter
	}

	applyCtx := ctx
	if req.ApplyTimeout > 0 {
		var cancel context.CancelFunc
		applyCtx, cancel = context.WithTimeout(ctx, req.ApplyTimeout)
		defer cancel()
	}

	logger.Info("applying", "adapter", r.Adapter.Name(), "stack", id.Stack)
	if err := r.Adapter.Apply(applyCtx, id, artifacts); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrApplyTimedOut
		}
		return Result{State: StateFailed, Identity: id, Rendered: artifacts},
			NewApplyError(r.Adapter.Name(), err)
	}

	return Result{State: StateDone, Identity: id, Rendered: artifacts, Applied: true}, nil
}

// parseComposeArtifacts parses the compose-shaped artifacts in a rendered
// set. Artifacts with other extensions pass through rendering untyped; only
// compose documents feed the artifact rules.
func parseComposeArtifacts(artifacts []render.RenderedArtifact) ([]*compose.ParsedSpec, error) {
	var specs []*compose.ParsedSpec
	for _, artifact := range artifacts {
		if !composeShaped(artifact.Name) {
			continue
		}
		spec, err := compose.ParseArtifact(artifact.Name, artifact.Content)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// composeShaped reports whether an artifact name looks like a compose
// document.
func composeShaped(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// onlyGateViolations reports whether every violation is the closed
// production gate.
func onlyGateViolations(violations []policy.Violation) bool {
	for _, v := range violations {
		if v.Class != policy.ClassProductionGateClosed {
			return false
		}
	}
	return len(violations) > 0
}
