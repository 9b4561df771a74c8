package docker

import (
	"context"

	"github.com/stackpact/stackpact/internal/core/ingress"
	"github.com/stackpact/stackpact/internal/core/inventory"
)

// ContainerLister is the subset of Client the inventory source needs.
type ContainerLister interface {
	ListContainers(ctx context.Context, labelFilters map[string]string) ([]ContainerInfo, error)
}

// InventorySource observes running containers and exposes them as an
// inventory snapshot for runtime validation.
type InventorySource struct {
	lister ContainerLister
}

// NewInventorySource creates an inventory source over the given client.
func NewInventorySource(lister ContainerLister) *InventorySource {
	return &InventorySource{lister: lister}
}

// Snapshot lists every running container. It deliberately does not filter
// by ownership label: runtime rules need to see unowned containers too,
// e.g. a stray process bound to an edge port.
func (s *InventorySource) Snapshot(ctx context.Context, stack string) (*inventory.Snapshot, error) {
	containers, err := s.lister.ListContainers(ctx, nil)
	if err != nil {
		return nil, err
	}

	snapshot := &inventory.Snapshot{Source: "docker"}
	for _, c := range containers {
		snapshot.Resources = append(snapshot.Resources, toResource(c))
	}
	return snapshot, nil
}

func toResource(c ContainerInfo) inventory.Resource {
	var bound []int
	for _, p := range c.Ports {
		if p.HostPort > 0 {
			bound = append(bound, p.HostPort)
		}
	}
	return inventory.Resource{
		Name:       c.Name,
		Image:      c.Image,
		Labels:     c.Labels,
		BoundPorts: bound,
		Networks:   c.Networks,
	}
}

// OwnershipFilter returns the label filter that selects containers owned by
// the given stack.
func OwnershipFilter(stack string) map[string]string {
	return map[string]string{ingress.LabelStack: stack}
}
