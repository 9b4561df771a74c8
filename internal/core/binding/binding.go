// Package binding models the resolved key/value environment used to render
// one deployment. This is part of the Functional Core - all functions are
// pure with no I/O.
package binding

import (
	"sort"
	"strings"

	"github.com/stackpact/stackpact/internal/core/identity"
)

// =============================================================================
// Binding
// =============================================================================

// Binding is the resolved environment for rendering one deployment. Keys are
// partitioned into plain values and secret references; in prod, secret
// references must point at platform secret locations, never literal secret
// material (enforced by the policy validator, not here).
type Binding struct {
	Identity identity.StackIdentity

	// PlainValues holds non-secret keys, canonical and passthrough alike.
	PlainValues map[string]string

	// SecretRefs holds secret-like keys. Values are references (or, in dev,
	// possibly literals); the builder only classifies, it never judges.
	SecretRefs map[string]string
}

// Build constructs a Binding from a resolved identity and raw inputs.
//
// Canonical keys (STACK, APP_HOST, COMPOSE_PROJECT_NAME, the domain suffix
// key) are injected from the identity, overriding any raw echo of the same
// key. Unrecognized keys pass through untouched. Secret-like keys are routed
// to SecretRefs.
func Build(id identity.StackIdentity, raw map[string]string) Binding {
	b := Binding{
		Identity:    id,
		PlainValues: make(map[string]string),
		SecretRefs:  make(map[string]string),
	}

	for k, v := range raw {
		if IsSecretKey(k) {
			b.SecretRefs[k] = v
		} else {
			b.PlainValues[k] = v
		}
	}

	// Canonical keys always reflect the derived identity.
	b.PlainValues[identity.KeyStack] = id.Stack
	b.PlainValues[identity.KeyAppHost] = id.AppHost
	b.PlainValues[identity.KeyProjectName] = id.ProjectName
	switch id.Environment {
	case identity.EnvDev:
		b.PlainValues[identity.KeyLocalDomain] = id.DomainSuffix
	case identity.EnvProd:
		b.PlainValues[identity.KeyBaseDomain] = id.DomainSuffix
	}

	return b
}

// Values flattens the binding into a single map for template rendering.
// Secret references render like any other key; what may not happen in prod
// is file-based sourcing, which the policy validator checks.
func (b Binding) Values() map[string]string {
	merged := make(map[string]string, len(b.PlainValues)+len(b.SecretRefs))
	for k, v := range b.PlainValues {
		merged[k] = v
	}
	for k, v := range b.SecretRefs {
		merged[k] = v
	}
	return merged
}

// Keys returns all binding keys in sorted order.
func (b Binding) Keys() []string {
	keys := make([]string, 0, len(b.PlainValues)+len(b.SecretRefs))
	for k := range b.PlainValues {
		keys = append(keys, k)
	}
	for k := range b.SecretRefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// Secret Classification
// =============================================================================

// secretKeySuffixes mark a binding key as secret-like.
var secretKeySuffixes = []string{
	"_PASSWORD",
	"_PASSWORD_FILE",
	"_SECRET",
	"_SECRET_FILE",
	"_TOKEN",
	"_API_KEY",
	"_PRIVATE_KEY",
}

// IsSecretKey reports whether a binding key names secret material.
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, suffix := range secretKeySuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// IsFileSourced reports whether a secret entry is sourced from a file-based
// mechanism: a *_FILE key, a file: scheme, or a path-shaped value.
func IsFileSourced(key, value string) bool {
	if strings.HasSuffix(strings.ToUpper(key), "_FILE") {
		return true
	}
	if strings.HasPrefix(value, "file://") || strings.HasPrefix(value, "file:") {
		return true
	}
	if strings.HasPrefix(value, "/run/secrets/") || strings.HasPrefix(value, "./secrets/") {
		return true
	}
	return false
}
