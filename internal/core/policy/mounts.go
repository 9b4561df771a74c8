package policy

import (
	"fmt"
	"strings"

	"github.com/stackpact/stackpact/internal/core/compose"
)

// =============================================================================
// Bridged Mount Rule
// =============================================================================

// bridgedPathPrefixes are bind-mount source prefixes that cross a
// virtualized or bridged drive boundary (WSL and Docker Desktop drive
// shares). Such mounts are non-portable and an order of magnitude slower
// than native paths.
var bridgedPathPrefixes = []string{
	"/mnt/c/",
	"/mnt/d/",
	"/c/",
	"/d/",
	"//c/",
	"//d/",
}

// BridgedMountRule forbids bind mounts whose source crosses a bridged drive
// boundary.
type BridgedMountRule struct{}

func (BridgedMountRule) Name() string { return "bridged-mount" }

func (BridgedMountRule) Evaluate(in Input) []Violation {
	var violations []Violation

	for _, spec := range in.Artifacts {
		for _, svc := range spec.Services {
			for _, mount := range svc.Mounts {
				if mount.Type != compose.MountTypeBind {
					continue
				}
				if bridgedPath(mount.Source) {
					violations = append(violations, Violation{
						Rule:   "bridged-mount",
						Class:  ClassBridgedMount,
						Value:  mount.Source,
						Reason: fmt.Sprintf("service %q bind-mounts %q across a bridged drive boundary", svc.Name, mount.Source),
					})
				}
			}
		}
	}

	return violations
}

// bridgedPath reports whether a mount source crosses a bridged drive.
func bridgedPath(source string) bool {
	lower := strings.ToLower(source)
	for _, prefix := range bridgedPathPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	// Windows drive letter, e.g. C:\Users or c:/Users.
	if len(lower) >= 3 && lower[0] >= 'a' && lower[0] <= 'z' && lower[1] == ':' &&
		(lower[2] == '\\' || lower[2] == '/') {
		return true
	}
	return false
}
