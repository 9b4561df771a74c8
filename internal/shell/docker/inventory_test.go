package docker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpact/stackpact/internal/core/ingress"
)

type fakeLister struct {
	containers []ContainerInfo
	filters    map[string]string
}

func (f *fakeLister) ListContainers(_ context.Context, labelFilters map[string]string) ([]ContainerInfo, error) {
	f.filters = labelFilters
	return f.containers, nil
}

func TestInventorySource_Snapshot(t *testing.T) {
	lister := &fakeLister{containers: []ContainerInfo{
		{
			Name:  "acctdemo-web",
			Image: "nginx:1.25.3",
			Labels: map[string]string{
				ingress.LabelStack: "acctdemo",
				ingress.LabelRole:  ingress.RoleEdge,
			},
			Ports:    []PortBinding{{ContainerPort: 80, HostPort: 443, Protocol: "tcp"}},
			Networks: []string{"acctdemo-net"},
		},
		{
			Name:  "stray",
			Image: "redis:7.2.4",
			Ports: []PortBinding{{ContainerPort: 6379, HostPort: 0}},
		},
	}}

	source := NewInventorySource(lister)
	snap, err := source.Snapshot(context.Background(), "acctdemo")
	require.NoError(t, err)

	assert.Equal(t, "docker", snap.Source)
	require.Len(t, snap.Resources, 2)

	web := snap.Resources[0]
	assert.Equal(t, "acctdemo-web", web.Name)
	assert.Equal(t, []int{443}, web.BoundPorts)
	assert.Equal(t, "acctdemo", web.Labels[ingress.LabelStack])

	// Unpublished ports are not bound.
	assert.Empty(t, snap.Resources[1].BoundPorts)

	// The snapshot is unfiltered: foreign containers must be visible.
	assert.Nil(t, lister.filters)
}

func TestOwnershipFilter(t *testing.T) {
	assert.Equal(t, map[string]string{ingress.LabelStack: "acctdemo"}, OwnershipFilter("acctdemo"))
}
