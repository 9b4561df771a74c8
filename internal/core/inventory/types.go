// Package inventory defines the read-only view of currently running
// resources. Snapshots are observations - the core never mutates runtime
// state through them.
package inventory

// =============================================================================
// Snapshot Types
// =============================================================================

// Resource is one running resource (container, process, instance) as
// observed by a runtime collaborator.
type Resource struct {
	// Name is the runtime-visible resource name.
	Name string `json:"name"`

	// Image is the image reference the resource runs, if any.
	Image string `json:"image,omitempty"`

	// Labels are the declared ownership labels on the resource.
	Labels map[string]string `json:"labels,omitempty"`

	// BoundPorts are the host ports the resource is bound to.
	BoundPorts []int `json:"bound_ports,omitempty"`

	// Networks are the network attachments of the resource.
	Networks []string `json:"networks,omitempty"`
}

// BoundTo reports whether the resource is bound to the given host port.
func (r Resource) BoundTo(port int) bool {
	for _, p := range r.BoundPorts {
		if p == port {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time, read-only observation of running resources.
type Snapshot struct {
	// Source names the collaborator the snapshot came from ("docker",
	// "aws", ...). Diagnostic only.
	Source string `json:"source,omitempty"`

	Resources []Resource `json:"resources"`
}

// BoundTo returns the resources bound to the given host port.
func (s *Snapshot) BoundTo(port int) []Resource {
	var bound []Resource
	for _, r := range s.Resources {
		if r.BoundTo(port) {
			bound = append(bound, r)
		}
	}
	return bound
}
