package docker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stackpact/stackpact/internal/core/compose"
	"github.com/stackpact/stackpact/internal/core/identity"
	"github.com/stackpact/stackpact/internal/core/ingress"
	"github.com/stackpact/stackpact/internal/core/render"
)

// =============================================================================
// ComposeAdapter
// =============================================================================

// Engine is the subset of Client the adapter needs.
type Engine interface {
	EnsureNetwork(ctx context.Context, spec NetworkSpec) (string, error)
	EnsureVolume(ctx context.Context, spec VolumeSpec) error
	FindContainer(ctx context.Context, name string) (*ContainerInfo, error)
	RemoveContainer(ctx context.Context, id string) error
	CreateContainer(ctx context.Context, spec ContainerSpec) (string, error)
	StartContainer(ctx context.Context, id string) error
}

// ComposeAdapter applies compose-shaped artifacts to a Docker engine. Every
// resource it creates carries ownership labels so later runs can tell owned
// resources from foreign ones.
type ComposeAdapter struct {
	engine Engine
	logger *slog.Logger
}

// NewComposeAdapter creates an adapter over the given engine.
func NewComposeAdapter(engine Engine, logger *slog.Logger) *ComposeAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComposeAdapter{engine: engine, logger: logger}
}

// Name identifies the adapter.
func (a *ComposeAdapter) Name() string {
	return "docker"
}

// Apply applies the artifact set to the engine: networks and volumes first,
// then containers. A container whose owned predecessor already runs the same
// image is left alone; an owned predecessor with a different image is
// replaced. A container name held by a foreign (unowned) container aborts
// the apply.
func (a *ComposeAdapter) Apply(ctx context.Context, id identity.StackIdentity, artifacts []render.RenderedArtifact) error {
	for _, artifact := range artifacts {
		if !composeShaped(artifact.Name) {
			continue
		}
		spec, err := compose.ParseArtifact(artifact.Name, artifact.Content)
		if err != nil {
			return fmt.Errorf("apply %s: %w", artifact.Name, err)
		}
		if err := a.applySpec(ctx, id, spec); err != nil {
			return err
		}
	}
	return nil
}

func (a *ComposeAdapter) applySpec(ctx context.Context, id identity.StackIdentity, spec *compose.ParsedSpec) error {
	stackLabels := map[string]string{ingress.LabelStack: id.Stack}

	for _, net := range spec.Networks {
		if net.External {
			continue
		}
		if _, err := a.engine.EnsureNetwork(ctx, NetworkSpec{Name: net.Name, Labels: stackLabels}); err != nil {
			return err
		}
		a.logger.Debug("network ensured", "network", net.Name, "stack", id.Stack)
	}

	for _, vol := range spec.Volumes {
		if vol.External {
			continue
		}
		if err := a.engine.EnsureVolume(ctx, VolumeSpec{Name: vol.Name, Labels: stackLabels}); err != nil {
			return err
		}
		a.logger.Debug("volume ensured", "volume", vol.Name, "stack", id.Stack)
	}

	for _, svc := range spec.Services {
		if err := a.applyService(ctx, id, svc); err != nil {
			return err
		}
	}
	return nil
}

func (a *ComposeAdapter) applyService(ctx context.Context, id identity.StackIdentity, svc compose.Service) error {
	name := ContainerName(id.Stack, svc.Name)

	existing, err := a.engine.FindContainer(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		if !ingress.OwnedBy(existing.Labels, id.Stack) {
			return NewEngineError("Apply", "container", name,
				fmt.Sprintf("name held by a container not owned by stack %q", id.Stack), ErrNotOwned)
		}
		if existing.Image == svc.Image && existing.State == "running" {
			a.logger.Debug("container up to date", "container", name, "image", svc.Image)
			return nil
		}
		if err := a.engine.RemoveContainer(ctx, existing.ID); err != nil {
			return err
		}
		a.logger.Info("container replaced", "container", name, "image", svc.Image)
	}

	containerID, err := a.engine.CreateContainer(ctx, BuildContainerSpec(id, svc))
	if err != nil {
		return err
	}
	if err := a.engine.StartContainer(ctx, containerID); err != nil {
		return err
	}
	a.logger.Info("container started", "container", name, "image", svc.Image)
	return nil
}

// =============================================================================
// Spec construction (pure)
// =============================================================================

// ContainerName is the engine-level name for a stack's service container.
func ContainerName(stack, service string) string {
	return stack + "-" + service
}

// BuildContainerSpec converts a parsed service into an engine container spec,
// merging ownership labels over the artifact's own labels.
func BuildContainerSpec(id identity.StackIdentity, svc compose.Service) ContainerSpec {
	labels := make(map[string]string, len(svc.Labels)+3)
	for k, v := range svc.Labels {
		labels[k] = v
	}
	role := ingress.RoleOf(svc.Labels)
	if role == "" {
		role = ingress.RoleApp
	}
	for k, v := range ingress.OwnershipLabels(id.Stack, svc.Name, role) {
		labels[k] = v
	}

	// Edge services without declared routing get the front-door labels
	// generated from the derived host.
	if role == ingress.RoleEdge && !hasRouteLabels(svc.Labels) {
		port := ingress.EdgePortHTTP
		if len(svc.Ports) > 0 {
			port = int(svc.Ports[0].Target)
		}
		for k, v := range ingress.RouteLabels(ingress.RouteParams{
			Stack:       id.Stack,
			ServiceName: svc.Name,
			AppHost:     id.AppHost,
			Port:        port,
			EnableTLS:   id.Environment == identity.EnvProd,
		}) {
			labels[k] = v
		}
	}

	spec := ContainerSpec{
		Name:     ContainerName(id.Stack, svc.Name),
		Image:    svc.Image,
		Env:      svc.Environment,
		Labels:   labels,
		Networks: svc.Networks,
	}

	for _, p := range svc.Ports {
		spec.Ports = append(spec.Ports, PortBinding{
			ContainerPort: int(p.Target),
			HostPort:      int(p.Published),
			Protocol:      p.Protocol,
			HostIP:        p.HostIP,
		})
	}

	for _, m := range svc.Mounts {
		spec.Mounts = append(spec.Mounts, MountSpec{
			Source:   m.Source,
			Target:   m.Target,
			Bind:     m.Type == compose.MountTypeBind,
			ReadOnly: m.ReadOnly,
		})
	}

	return spec
}

func hasRouteLabels(labels map[string]string) bool {
	for k := range labels {
		if strings.HasPrefix(k, "traefik.http.routers.") {
			return true
		}
	}
	return false
}

func composeShaped(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
