package policy

import (
	"fmt"

	"github.com/stackpact/stackpact/internal/core/binding"
	"github.com/stackpact/stackpact/internal/core/identity"
)

// =============================================================================
// Secret Source Rule
// =============================================================================

// SecretSourceRule forbids file-based secret sourcing in prod. Production
// secrets come from the platform secret store; a file on disk is neither
// auditable nor rotatable there. The rule checks both binding entries and
// compose-level secret declarations in the artifacts.
//
// Dev bindings pass unconditionally.
type SecretSourceRule struct{}

func (SecretSourceRule) Name() string { return "secret-source" }

func (SecretSourceRule) Evaluate(in Input) []Violation {
	if in.Environment() != identity.EnvProd {
		return nil
	}

	var violations []Violation

	for key, value := range in.Binding.SecretRefs {
		if binding.IsFileSourced(key, value) {
			violations = append(violations, Violation{
				Rule:   "secret-source",
				Class:  ClassForbiddenSecretFile,
				Value:  key,
				Reason: fmt.Sprintf("prod secret %q is sourced from a file-based mechanism", key),
			})
		}
	}

	for _, spec := range in.Artifacts {
		for _, secret := range spec.Secrets {
			if secret.FileSourced() {
				violations = append(violations, Violation{
					Rule:   "secret-source",
					Class:  ClassForbiddenSecretFile,
					Value:  secret.Name,
					Reason: fmt.Sprintf("prod artifact %q declares file-backed secret %q (%s)", spec.Artifact, secret.Name, secret.File),
				})
			}
		}
	}

	return violations
}
