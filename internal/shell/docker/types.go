// Package docker talks to the Docker engine: live inventory observation and
// the compose runtime adapter. This is part of the Imperative Shell.
package docker

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating a container.
type ContainerSpec struct {
	Name     string
	Image    string
	Env      map[string]string
	Labels   map[string]string
	Ports    []PortBinding
	Mounts   []MountSpec
	Networks []string
}

// PortBinding defines a port mapping.
type PortBinding struct {
	ContainerPort int
	HostPort      int    // 0 for auto-assign
	Protocol      string // "tcp" or "udp", "" defaults to tcp
	HostIP        string // "" for 0.0.0.0
}

// MountSpec defines a volume or bind mount.
type MountSpec struct {
	Source   string // Volume name or host path
	Target   string // Container path
	Bind     bool   // true for bind mounts
	ReadOnly bool
}

// ContainerInfo describes an observed container.
type ContainerInfo struct {
	ID       string
	Name     string
	Image    string
	State    string
	Ports    []PortBinding
	Labels   map[string]string
	Networks []string
}

// =============================================================================
// Network / Volume Types
// =============================================================================

// NetworkSpec defines the specification for creating a network.
type NetworkSpec struct {
	Name   string
	Labels map[string]string
}

// VolumeSpec defines the specification for creating a volume.
type VolumeSpec struct {
	Name   string
	Labels map[string]string
}
