package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Hardcoded Host Rule
// =============================================================================

// hostRuleRegex extracts hostnames from front-door Host(`...`) rules.
var hostRuleRegex = regexp.MustCompile("Host\\(`([^`]+)`\\)")

// HardcodedHostRule checks that every external host literal in an artifact is
// the derived ${stack}.${domainSuffix} hostname. A hand-written hostname
// survives exactly one stack renaming; a derived one survives all of them.
//
// Host candidates are hostnames in Host() routing rules and values of
// *_HOST environment keys. Bare service names ("db") are container-network
// names, not external hosts, and are exempt.
type HardcodedHostRule struct{}

func (HardcodedHostRule) Name() string { return "no-hardcoded-host" }

func (r HardcodedHostRule) Evaluate(in Input) []Violation {
	appHost := in.Binding.Identity.AppHost
	var violations []Violation

	for _, spec := range in.Artifacts {
		for _, svc := range spec.Services {
			for _, label := range svc.Labels {
				for _, match := range hostRuleRegex.FindAllStringSubmatch(label, -1) {
					if host := match[1]; host != appHost {
						violations = append(violations, Violation{
							Rule:   "no-hardcoded-host",
							Class:  ClassHardcodedHost,
							Value:  host,
							Reason: fmt.Sprintf("service %q routes host %q instead of the derived host %q", svc.Name, host, appHost),
						})
					}
				}
			}

			for key, value := range svc.Environment {
				if !hostShapedKey(key) {
					continue
				}
				if isExternalHost(value) && value != appHost {
					violations = append(violations, Violation{
						Rule:   "no-hardcoded-host",
						Class:  ClassHardcodedHost,
						Value:  value,
						Reason: fmt.Sprintf("service %q sets %s=%q instead of the derived host %q", svc.Name, key, value, appHost),
					})
				}
			}
		}
	}

	return violations
}

// hostShapedKey reports whether an environment key names a host.
func hostShapedKey(key string) bool {
	upper := strings.ToUpper(key)
	return upper == "APP_HOST" || strings.HasSuffix(upper, "_HOST") || strings.HasSuffix(upper, "_HOSTNAME")
}

// isExternalHost reports whether a value looks like an external hostname.
// Dotless names resolve on the container network; localhost is the host
// itself. Neither crosses the front door.
func isExternalHost(value string) bool {
	if value == "" || value == "localhost" {
		return false
	}
	return strings.Contains(value, ".")
}
