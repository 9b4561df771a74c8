package policy

import (
	"github.com/stackpact/stackpact/internal/core/identity"
)

// =============================================================================
// ARM Gate Rule
// =============================================================================

// ARMGateRule checks the production authorization toggle: a prod run that
// wants to apply must have the external gate open. The pipeline treats this
// violation class as a Blocked terminal state, not a Failed one - a closed
// gate is an operator decision, not a configuration defect.
type ARMGateRule struct{}

func (ARMGateRule) Name() string { return "arm-gate" }

func (ARMGateRule) Evaluate(in Input) []Violation {
	if in.Environment() != identity.EnvProd || !in.WantsApply || in.GateOpen {
		return nil
	}
	return []Violation{{
		Rule:   "arm-gate",
		Class:  ClassProductionGateClosed,
		Value:  in.Stack(),
		Reason: "production apply requested but the authorization toggle is absent",
	}}
}
