package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digitalocean/godo"

	coreinventory "github.com/stackpact/stackpact/internal/core/inventory"
	"github.com/stackpact/stackpact/internal/core/ingress"
)

// DigitalOceanProvider implements Provider for DigitalOcean droplets.
type DigitalOceanProvider struct {
	client *godo.Client
	logger *slog.Logger
}

// NewDigitalOceanProvider creates a new DigitalOcean inventory provider.
func NewDigitalOceanProvider(apiToken string, logger *slog.Logger) *DigitalOceanProvider {
	return &DigitalOceanProvider{
		client: godo.NewFromToken(apiToken),
		logger: logger.With("provider", "digitalocean"),
	}
}

// DropletTag is the droplet tag that marks ownership by a stack. DigitalOcean
// tags cannot carry slashes, so the engine label is flattened.
func DropletTag(stack string) string {
	return "pact-stack-" + stack
}

// Snapshot lists droplets tagged with the stack.
func (p *DigitalOceanProvider) Snapshot(ctx context.Context, stack string) (*coreinventory.Snapshot, error) {
	snapshot := &coreinventory.Snapshot{Source: "digitalocean"}

	opts := &godo.ListOptions{PerPage: 100}
	for {
		droplets, resp, err := p.client.Droplets.ListByTag(ctx, DropletTag(stack), opts)
		if err != nil {
			return nil, fmt.Errorf("list droplets: %w", err)
		}

		for _, d := range droplets {
			snapshot.Resources = append(snapshot.Resources, dropletResource(d, stack))
		}

		if resp.Links == nil || resp.Links.IsLastPage() {
			break
		}
		page, err := resp.Links.CurrentPage()
		if err != nil {
			break
		}
		opts.Page = page + 1
	}

	p.logger.Debug("droplet snapshot taken", "stack", stack, "resources", len(snapshot.Resources))
	return snapshot, nil
}

func dropletResource(d godo.Droplet, stack string) coreinventory.Resource {
	image := ""
	if d.Image != nil {
		image = d.Image.Slug
	}
	// Recover the ownership label from the flattened tag so runtime rules
	// see a uniform label set across providers.
	labels := map[string]string{ingress.LabelStack: stack}

	var networks []string
	if d.Networks != nil {
		for _, net := range d.Networks.V4 {
			if net.Type == "private" {
				networks = append(networks, net.IPAddress)
			}
		}
	}

	return coreinventory.Resource{
		Name:     d.Name,
		Image:    image,
		Labels:   labels,
		Networks: networks,
	}
}
