package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceBoundTo(t *testing.T) {
	r := Resource{Name: "edge", BoundPorts: []int{80, 443}}

	assert.True(t, r.BoundTo(80))
	assert.True(t, r.BoundTo(443))
	assert.False(t, r.BoundTo(8080))
	assert.False(t, Resource{}.BoundTo(80))
}

func TestSnapshotBoundTo(t *testing.T) {
	snap := &Snapshot{
		Source: "docker",
		Resources: []Resource{
			{Name: "edge", BoundPorts: []int{80, 443}},
			{Name: "app", BoundPorts: []int{8080}},
			{Name: "worker"},
		},
	}

	bound := snap.BoundTo(443)
	assert.Len(t, bound, 1)
	assert.Equal(t, "edge", bound[0].Name)

	assert.Empty(t, snap.BoundTo(9090))
}
