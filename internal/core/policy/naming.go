package policy

import (
	"fmt"
	"strings"
)

// =============================================================================
// Namespacing Rules
// =============================================================================

// NamespacingRule checks that every externally visible name carries the stack
// token: networks the runtime creates and front-door router names embedded in
// routing labels. Names internal to the artifact (service keys) are scoped by
// the project name and are not externally visible.
type NamespacingRule struct{}

func (NamespacingRule) Name() string { return "namespacing" }

func (NamespacingRule) Evaluate(in Input) []Violation {
	stack := in.Stack()
	var violations []Violation

	for _, spec := range in.Artifacts {
		for _, net := range spec.Networks {
			if net.External {
				// External networks are shared infrastructure owned
				// elsewhere (e.g. the edge network).
				continue
			}
			if !strings.Contains(net.Name, stack) {
				violations = append(violations, Violation{
					Rule:   "namespacing",
					Class:  ClassMissingNamespace,
					Value:  net.Name,
					Reason: fmt.Sprintf("network %q does not carry the stack token %q", net.Name, stack),
				})
			}
		}

		for _, svc := range spec.Services {
			for _, router := range routerNames(svc.Labels) {
				if !strings.Contains(router, stack) {
					violations = append(violations, Violation{
						Rule:   "namespacing",
						Class:  ClassMissingNamespace,
						Value:  router,
						Reason: fmt.Sprintf("router %q on service %q does not carry the stack token %q", router, svc.Name, stack),
					})
				}
			}
		}
	}

	return violations
}

// routerNames extracts front-door router names from routing labels, e.g.
// "acctdemo-web" from "traefik.http.routers.acctdemo-web.rule".
func routerNames(labels map[string]string) []string {
	const prefix = "traefik.http.routers."
	seen := make(map[string]bool)
	var names []string
	for key := range labels {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		if dot := strings.IndexByte(rest, '.'); dot > 0 {
			name := rest[:dot]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// VolumeNamespacingRule checks that every persistent volume name is scoped by
// the stack prefix, so volumes from concurrently deployed stacks never
// collide or shadow each other.
type VolumeNamespacingRule struct{}

func (VolumeNamespacingRule) Name() string { return "volume-namespacing" }

func (VolumeNamespacingRule) Evaluate(in Input) []Violation {
	stack := in.Stack()
	var violations []Violation

	for _, spec := range in.Artifacts {
		for _, vol := range spec.Volumes {
			if vol.External {
				continue
			}
			if !scopedVolumeName(vol.Name, stack) {
				violations = append(violations, Violation{
					Rule:   "volume-namespacing",
					Class:  ClassUnscopedVolume,
					Value:  vol.Name,
					Reason: fmt.Sprintf("volume %q is not scoped by the stack prefix %q", vol.Name, stack),
				})
			}
		}
	}

	return violations
}

// scopedVolumeName reports whether a volume name starts with the stack token
// followed by a separator.
func scopedVolumeName(name, stack string) bool {
	return strings.HasPrefix(name, stack+"_") || strings.HasPrefix(name, stack+"-")
}
