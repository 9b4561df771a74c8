package compose

// =============================================================================
// ParsedSpec - Main Output Type
// =============================================================================

// ParsedSpec is the policy-relevant view of one rendered compose-shaped
// artifact. It is decoupled from compose-go types so rule predicates never
// depend on the loader library.
type ParsedSpec struct {
	// Artifact is the name of the rendered artifact this spec came from.
	Artifact string `json:"artifact"`

	Services []Service `json:"services"`
	Networks []Network `json:"networks,omitempty"`
	Volumes  []Volume  `json:"volumes,omitempty"`

	// Secrets lists compose-level secret declarations. File-backed entries
	// feed the prod secret-source rule.
	Secrets []Secret `json:"secrets,omitempty"`
}

// =============================================================================
// Service Types
// =============================================================================

// Service is a single service definition.
type Service struct {
	Name        string            `json:"name"`
	Image       string            `json:"image,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Ports       []Port            `json:"ports,omitempty"`
	Mounts      []Mount           `json:"mounts,omitempty"`
	Networks    []string          `json:"networks,omitempty"`
	Secrets     []string          `json:"secrets,omitempty"`
}

// Port is a published port mapping.
type Port struct {
	Target    uint32 `json:"target"`              // Container port
	Published uint32 `json:"published,omitempty"` // Host port (0 = dynamic)
	Protocol  string `json:"protocol,omitempty"`
	HostIP    string `json:"host_ip,omitempty"`
}

// MountType is the kind of mount attached to a service.
type MountType string

const (
	MountTypeBind   MountType = "bind"
	MountTypeVolume MountType = "volume"
	MountTypeTmpfs  MountType = "tmpfs"
)

// Mount is a volume or bind mount attached to a service.
type Mount struct {
	Type     MountType `json:"type"`
	Source   string    `json:"source"` // Host path or volume name
	Target   string    `json:"target"` // Container path
	ReadOnly bool      `json:"readonly"`
}

// =============================================================================
// Network / Volume / Secret Types
// =============================================================================

// Network is a network definition.
type Network struct {
	Name     string            `json:"name"`
	Driver   string            `json:"driver,omitempty"`
	External bool              `json:"external"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// Volume is a named persistent volume definition.
type Volume struct {
	Name     string            `json:"name"`
	External bool              `json:"external"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// Secret is a compose-level secret declaration.
type Secret struct {
	Name string `json:"name"`

	// File is the host path for file-backed secrets. Empty for external
	// (platform-managed) secrets.
	File string `json:"file,omitempty"`

	External bool `json:"external"`
}

// FileSourced reports whether the secret is backed by a file on the host.
func (s Secret) FileSourced() bool {
	return !s.External && s.File != ""
}
