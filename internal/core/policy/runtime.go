package policy

import (
	"fmt"
	"strings"

	"github.com/stackpact/stackpact/internal/core/ingress"
)

// =============================================================================
// Runtime-State Rules
// =============================================================================

// Inventory-based rules observe the live runtime. They evaluate only when a
// snapshot is supplied; render/validate-only invocations carry no inventory
// and treat these rules as advisory.

// FrontDoorRule checks the single-front-door invariant: exactly one
// ingress-role resource bound to the shared edge ports, and no other resource
// bound to them directly.
type FrontDoorRule struct{}

func (FrontDoorRule) Name() string { return "single-front-door" }

func (FrontDoorRule) Evaluate(in Input) []Violation {
	if in.Inventory == nil {
		return nil
	}

	var violations []Violation

	for _, port := range ingress.EdgePorts() {
		bound := in.Inventory.BoundTo(port)

		edgeCount := 0
		for _, r := range bound {
			if ingress.RoleOf(r.Labels) == ingress.RoleEdge {
				edgeCount++
			} else {
				violations = append(violations, Violation{
					Rule:   "single-front-door",
					Class:  ClassFrontDoorViolation,
					Value:  r.Name,
					Reason: fmt.Sprintf("resource %q is bound to shared edge port %d without the edge role", r.Name, port),
				})
			}
		}

		if len(bound) > 0 && edgeCount != 1 {
			violations = append(violations, Violation{
				Rule:   "single-front-door",
				Class:  ClassFrontDoorViolation,
				Value:  fmt.Sprintf("port %d", port),
				Reason: fmt.Sprintf("%d ingress-role resources bound to shared edge port %d, want exactly 1", edgeCount, port),
			})
		}
	}

	return violations
}

// LabelDiscoveryRule checks that every running resource belonging to the
// stack is discoverable by its declared ownership labels. A resource carrying
// the stack token in its name but no ownership label can only be found by
// image ancestry, which breaks as soon as two stacks run the same image.
type LabelDiscoveryRule struct{}

func (LabelDiscoveryRule) Name() string { return "label-discovery" }

func (LabelDiscoveryRule) Evaluate(in Input) []Violation {
	if in.Inventory == nil {
		return nil
	}

	stack := in.Stack()
	var violations []Violation

	for _, r := range in.Inventory.Resources {
		if !strings.Contains(r.Name, stack) {
			continue
		}
		if ingress.OwnedBy(r.Labels, stack) {
			continue
		}
		violations = append(violations, Violation{
			Rule:   "label-discovery",
			Class:  ClassAncestryBasedLookup,
			Value:  r.Name,
			Reason: fmt.Sprintf("resource %q carries the stack token but no %s label; it is only discoverable by image ancestry", r.Name, ingress.LabelStack),
		})
	}

	return violations
}
