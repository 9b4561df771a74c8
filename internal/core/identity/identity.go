// Package identity resolves the canonical stack identity for a deployment.
// This is part of the Functional Core - all functions are pure with no I/O.
package identity

import (
	"fmt"
	"regexp"
)

// =============================================================================
// Environment
// =============================================================================

// Environment identifies the deployment tier a stack targets.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// IsValid checks if the environment is a known tier.
func (e Environment) IsValid() bool {
	switch e {
	case EnvDev, EnvProd:
		return true
	default:
		return false
	}
}

// ParseEnvironment converts a textual environment name into an Environment.
// Returns ErrUnknownEnvironment for anything other than "dev" or "prod".
func ParseEnvironment(value string) (Environment, error) {
	env := Environment(value)
	if !env.IsValid() {
		return "", NewIdentityError("environment", fmt.Sprintf("unknown environment %q", value), ErrUnknownEnvironment)
	}
	return env, nil
}

// =============================================================================
// Canonical Input Keys
// =============================================================================

// Canonical binding keys recognized by the resolver.
const (
	KeyStack       = "STACK"
	KeyLocalDomain = "LOCAL_DOMAIN"
	KeyBaseDomain  = "BASE_DOMAIN"
	KeyAppHost     = "APP_HOST"
	KeyProjectName = "COMPOSE_PROJECT_NAME"
)

// domainSuffixKeys maps each environment tier to the input key that supplies
// its domain suffix. Suffix selection is table-driven so adding a tier never
// touches the resolution logic.
var domainSuffixKeys = map[Environment]string{
	EnvDev:  KeyLocalDomain,
	EnvProd: KeyBaseDomain,
}

// =============================================================================
// Stack Token Grammar
// =============================================================================

// MaxStackLength is the maximum length of a stack token. The token appears in
// hostnames, so it is bounded by the DNS label limit.
const MaxStackLength = 63

// stackTokenRegex matches a valid stack token: lowercase alphanumerics and
// hyphens, starting and ending with an alphanumeric.
var stackTokenRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateStackToken checks a stack token against the token grammar.
// Returns nil if the token is valid.
func ValidateStackToken(stack string) error {
	if stack == "" {
		return NewIdentityError(KeyStack, "stack token is required", ErrInvalidIdentity)
	}
	if len(stack) > MaxStackLength {
		return NewIdentityError(KeyStack, fmt.Sprintf("stack token exceeds %d characters", MaxStackLength), ErrInvalidIdentity)
	}
	if !stackTokenRegex.MatchString(stack) {
		return NewIdentityError(KeyStack, fmt.Sprintf("stack token %q must be lowercase alphanumerics and hyphens", stack), ErrInvalidIdentity)
	}
	return nil
}

// =============================================================================
// StackIdentity
// =============================================================================

// StackIdentity is the resolved identity of one deployment stack.
//
// AppHost and ProjectName are pure functions of (Stack, Environment,
// DomainSuffix). They are derived during resolution and never stored or
// edited independently.
type StackIdentity struct {
	// Stack is the unique identity token for this deployment instance.
	Stack string `json:"stack"`

	// Environment is the deployment tier the stack targets.
	Environment Environment `json:"environment"`

	// DomainSuffix is the domain under which the stack is reachable,
	// selected by environment (LOCAL_DOMAIN for dev, BASE_DOMAIN for prod).
	DomainSuffix string `json:"domain_suffix"`

	// AppHost is the derived external hostname: {stack}.{domainSuffix}.
	AppHost string `json:"app_host"`

	// ProjectName is the derived runtime-scoping token governing resource
	// namespacing. Equal to Stack.
	ProjectName string `json:"project_name"`
}

// deriveAppHost computes the external hostname for a stack.
func deriveAppHost(stack, domainSuffix string) string {
	return fmt.Sprintf("%s.%s", stack, domainSuffix)
}

// =============================================================================
// Resolution
// =============================================================================

// Resolve derives the canonical StackIdentity from raw inputs and an
// environment tier.
//
// Rules:
//   - STACK is required and must match the token grammar
//   - the domain suffix comes from LOCAL_DOMAIN (dev) or BASE_DOMAIN (prod)
//   - APP_HOST and COMPOSE_PROJECT_NAME are derived; a caller-supplied value
//     that differs from the derived value fails with ErrDerivedFieldOverridden
//
// This is a pure function: same inputs always yield the identical identity.
//
// Example:
//
//	id, err := Resolve(map[string]string{
//	    "STACK":        "acctdemo",
//	    "LOCAL_DOMAIN": "localtest.me",
//	}, EnvDev)
//	// id.AppHost == "acctdemo.localtest.me"
//	// id.ProjectName == "acctdemo"
func Resolve(raw map[string]string, env Environment) (StackIdentity, error) {
	if !env.IsValid() {
		return StackIdentity{}, NewIdentityError("environment", fmt.Sprintf("unknown environment %q", env), ErrUnknownEnvironment)
	}

	stack := raw[KeyStack]
	if err := ValidateStackToken(stack); err != nil {
		return StackIdentity{}, err
	}

	suffixKey := domainSuffixKeys[env]
	suffix := raw[suffixKey]
	if suffix == "" {
		return StackIdentity{}, NewIdentityError(suffixKey, fmt.Sprintf("%s is required for environment %q", suffixKey, env), ErrInvalidIdentity)
	}

	id := StackIdentity{
		Stack:        stack,
		Environment:  env,
		DomainSuffix: suffix,
		AppHost:      deriveAppHost(stack, suffix),
		ProjectName:  stack,
	}

	// Derived fields may be echoed back verbatim but never overridden.
	if supplied, ok := raw[KeyAppHost]; ok && supplied != id.AppHost {
		return StackIdentity{}, NewIdentityError(KeyAppHost,
			fmt.Sprintf("%s=%q conflicts with derived value %q", KeyAppHost, supplied, id.AppHost),
			ErrDerivedFieldOverridden)
	}
	if supplied, ok := raw[KeyProjectName]; ok && supplied != id.ProjectName {
		return StackIdentity{}, NewIdentityError(KeyProjectName,
			fmt.Sprintf("%s=%q conflicts with derived value %q", KeyProjectName, supplied, id.ProjectName),
			ErrDerivedFieldOverridden)
	}

	return id, nil
}
