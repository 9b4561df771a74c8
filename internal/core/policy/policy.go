// Package policy validates bindings, rendered artifacts, and live runtime
// inventory against the deployment contract's invariant rule set.
//
// Rules are first-class predicates registered on a Validator. Evaluation is
// side-effect-free and order-independent: every rule runs, every violation is
// collected, nothing short-circuits and nothing auto-corrects.
package policy

import (
	"sort"

	"github.com/stackpact/stackpact/internal/core/binding"
	"github.com/stackpact/stackpact/internal/core/compose"
	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/inventory"
)

// =============================================================================
// Violation
// =============================================================================

// Violation classes reported by the canonical rule set.
const (
	ClassMissingNamespace     = "MissingNamespace"
	ClassHardcodedHost        = "HardcodedHost"
	ClassForbiddenSecretFile  = "ForbiddenSecretFile"
	ClassFrontDoorViolation   = "FrontDoorViolation"
	ClassAncestryBasedLookup  = "AncestryBasedLookup"
	ClassBridgedMount         = "BridgedMount"
	ClassUnscopedVolume       = "UnscopedVolume"
	ClassFloatingImageTag     = "FloatingImageTag"
	ClassProductionGateClosed = "ProductionGateClosed"
)

// Violation is one policy violation: the rule that found it, the offending
// value, and a human-readable reason.
type Violation struct {
	Rule   string `json:"rule"`
	Class  string `json:"class"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

// =============================================================================
// Rule Input
// =============================================================================

// Input is everything a rule may inspect. Rules treat it as read-only.
type Input struct {
	Binding   binding.Binding
	Artifacts []*compose.ParsedSpec

	// Inventory is the live runtime observation, or nil when the invocation
	// has no runtime to observe (render/validate-only runs). Inventory-based
	// rules skip evaluation when it is nil.
	Inventory *inventory.Snapshot

	// WantsApply marks a run that will reach the apply step if clean.
	WantsApply bool

	// GateOpen reflects the external authorization toggle.
	GateOpen bool
}

// Environment is the tier the validated binding targets.
func (in Input) Environment() identity.Environment {
	return in.Binding.Identity.Environment
}

// Stack is the stack token of the validated binding.
func (in Input) Stack() string {
	return in.Binding.Identity.Stack
}

// =============================================================================
// Rule
// =============================================================================

// Rule is an independently evaluable predicate over an Input.
//
// Implementations must be side-effect-free and independent of evaluation
// order: the validator's result is the same whatever order rules run in.
type Rule interface {
	// Name returns the stable rule identifier, e.g. "deterministic-image".
	Name() string

	// Evaluate returns the violations the rule found, or nil on pass.
	Evaluate(in Input) []Violation
}

// =============================================================================
// Validator
// =============================================================================

// Validator holds the rule registry. New invariants are added by registering
// a new Rule; existing rules and callers never change for it.
type Validator struct {
	rules []Rule
}

// NewValidator creates a Validator with no rules registered.
func NewValidator() *Validator {
	return &Validator{}
}

// DefaultValidator creates a Validator with the canonical rule set.
func DefaultValidator() *Validator {
	v := NewValidator()
	v.Register(
		NamespacingRule{},
		HardcodedHostRule{},
		SecretSourceRule{},
		FrontDoorRule{},
		LabelDiscoveryRule{},
		BridgedMountRule{},
		VolumeNamespacingRule{},
		DeterministicImageRule{},
		ARMGateRule{},
	)
	return v
}

// Register adds rules to the registry.
func (v *Validator) Register(rules ...Rule) {
	v.rules = append(v.rules, rules...)
}

// Rules returns the names of all registered rules.
func (v *Validator) Rules() []string {
	names := make([]string, 0, len(v.rules))
	for _, r := range v.rules {
		names = append(names, r.Name())
	}
	return names
}

// Validate evaluates every registered rule and returns all violations found.
// An empty result means pass. Validate never mutates state and never applies
// anything; it is purely diagnostic.
//
// The result is sorted (rule, value, reason), so it is identical whatever
// order the rules were registered or evaluated in.
func (v *Validator) Validate(in Input) []Violation {
	var violations []Violation
	for _, rule := range v.rules {
		violations = append(violations, rule.Evaluate(in)...)
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Reason < b.Reason
	})

	return violations
}
