package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	coreinventory "github.com/stackpact/stackpact/internal/core/inventory"
	"github.com/stackpact/stackpact/internal/core/ingress"
)

// HetznerProvider implements Provider for Hetzner Cloud servers.
type HetznerProvider struct {
	client *hcloud.Client
	logger *slog.Logger
}

// NewHetznerProvider creates a new Hetzner Cloud inventory provider.
func NewHetznerProvider(apiToken string, logger *slog.Logger) *HetznerProvider {
	return &HetznerProvider{
		client: hcloud.NewClient(hcloud.WithToken(apiToken)),
		logger: logger.With("provider", "hetzner"),
	}
}

// Snapshot lists servers carrying the stack ownership label.
func (p *HetznerProvider) Snapshot(ctx context.Context, stack string) (*coreinventory.Snapshot, error) {
	servers, err := p.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{
			LabelSelector: fmt.Sprintf("%s=%s", ingress.LabelStack, stack),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}

	snapshot := &coreinventory.Snapshot{Source: "hetzner"}
	for _, srv := range servers {
		snapshot.Resources = append(snapshot.Resources, serverResource(srv))
	}

	p.logger.Debug("server snapshot taken", "stack", stack, "resources", len(snapshot.Resources))
	return snapshot, nil
}

func serverResource(srv *hcloud.Server) coreinventory.Resource {
	image := ""
	if srv.Image != nil {
		image = srv.Image.Name
	}

	var networks []string
	for _, net := range srv.PrivateNet {
		if net.Network != nil {
			networks = append(networks, net.Network.Name)
		}
	}

	return coreinventory.Resource{
		Name:     srv.Name,
		Image:    image,
		Labels:   srv.Labels,
		Networks: networks,
	}
}
