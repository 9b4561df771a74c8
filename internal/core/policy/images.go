package policy

import (
	"fmt"
	"strings"
)

// =============================================================================
// Deterministic Image Rule
// =============================================================================

// DeterministicImageRule requires every image reference to be pinned: an
// explicit version tag (not "latest") or a content digest. A floating
// reference makes re-applying the same artifact land on different bytes.
type DeterministicImageRule struct{}

func (DeterministicImageRule) Name() string { return "deterministic-image" }

func (DeterministicImageRule) Evaluate(in Input) []Violation {
	var violations []Violation

	for _, spec := range in.Artifacts {
		for _, svc := range spec.Services {
			if reason := floatingImageReason(svc.Image); reason != "" {
				violations = append(violations, Violation{
					Rule:   "deterministic-image",
					Class:  ClassFloatingImageTag,
					Value:  svc.Image,
					Reason: fmt.Sprintf("service %q: %s", svc.Name, reason),
				})
			}
		}
	}

	return violations
}

// floatingImageReason returns why an image reference is not pinned, or ""
// when it is.
func floatingImageReason(image string) string {
	if image == "" {
		return "image reference is empty"
	}
	if strings.Contains(image, "@sha256:") {
		return ""
	}

	// The tag separator is a colon after the last slash; a colon before it
	// belongs to a registry port (registry:5000/app).
	tail := image
	if slash := strings.LastIndexByte(image, '/'); slash >= 0 {
		tail = image[slash+1:]
	}

	colon := strings.IndexByte(tail, ':')
	if colon < 0 {
		return fmt.Sprintf("image %q has no version tag", image)
	}

	tag := tail[colon+1:]
	if tag == "" {
		return fmt.Sprintf("image %q has an empty version tag", image)
	}
	if tag == "latest" {
		return fmt.Sprintf("image %q uses the floating tag \"latest\"", image)
	}
	return ""
}
