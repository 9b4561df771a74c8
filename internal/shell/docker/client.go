package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Client
// =============================================================================

// Client wraps the Docker SDK for the operations the adapter and inventory
// source need.
type Client struct {
	cli *client.Client
}

// NewClient creates a Docker client. An empty host uses the environment
// default.
func NewClient(host string) (*Client, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewEngineError("NewClient", "", "", "failed to create client", ErrConnectionFailed)
	}
	return &Client{cli: cli}, nil
}

// Ping checks if the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return NewEngineError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// =============================================================================
// Observation
// =============================================================================

// ListContainers returns all containers, optionally filtered by label
// key=value pairs.
func (c *Client) ListContainers(ctx context.Context, labelFilters map[string]string) ([]ContainerInfo, error) {
	listOpts := container.ListOptions{All: false}

	if len(labelFilters) > 0 {
		f := filters.NewArgs()
		for k, v := range labelFilters {
			f.Add("label", fmt.Sprintf("%s=%s", k, v))
		}
		listOpts.Filters = f
	}

	containers, err := c.cli.ContainerList(ctx, listOpts)
	if err != nil {
		return nil, NewEngineError("ListContainers", "container", "", err.Error(), err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, item := range containers {
		name := ""
		if len(item.Names) > 0 {
			name = strings.TrimPrefix(item.Names[0], "/")
		}

		var ports []PortBinding
		for _, p := range item.Ports {
			ports = append(ports, PortBinding{
				ContainerPort: int(p.PrivatePort),
				HostPort:      int(p.PublicPort),
				Protocol:      p.Type,
				HostIP:        p.IP,
			})
		}

		var networks []string
		if item.NetworkSettings != nil {
			for netName := range item.NetworkSettings.Networks {
				networks = append(networks, netName)
			}
		}

		result = append(result, ContainerInfo{
			ID:       item.ID,
			Name:     name,
			Image:    item.Image,
			State:    item.State,
			Ports:    ports,
			Labels:   item.Labels,
			Networks: networks,
		})
	}

	return result, nil
}

// =============================================================================
// Mutation (used by the compose adapter only)
// =============================================================================

// EnsureNetwork creates the network if it does not exist and returns its ID.
func (c *Client) EnsureNetwork(ctx context.Context, spec NetworkSpec) (string, error) {
	f := filters.NewArgs()
	f.Add("name", spec.Name)
	existing, err := c.cli.NetworkList(ctx, network.ListOptions{Filters: f})
	if err != nil {
		return "", NewEngineError("EnsureNetwork", "network", spec.Name, err.Error(), err)
	}
	for _, net := range existing {
		if net.Name == spec.Name {
			return net.ID, nil
		}
	}

	created, err := c.cli.NetworkCreate(ctx, spec.Name, network.CreateOptions{
		Driver: "bridge",
		Labels: spec.Labels,
	})
	if err != nil {
		return "", NewEngineError("EnsureNetwork", "network", spec.Name, err.Error(), err)
	}
	return created.ID, nil
}

// EnsureVolume creates the named volume if it does not exist.
func (c *Client) EnsureVolume(ctx context.Context, spec VolumeSpec) error {
	// VolumeCreate is idempotent for an existing name; labels on the
	// first creation win.
	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   spec.Name,
		Labels: spec.Labels,
	})
	if err != nil {
		return NewEngineError("EnsureVolume", "volume", spec.Name, err.Error(), err)
	}
	return nil
}

// FindContainer returns the container with the exact name, or nil.
func (c *Client) FindContainer(ctx context.Context, name string) (*ContainerInfo, error) {
	f := filters.NewArgs()
	f.Add("name", name)
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return nil, NewEngineError("FindContainer", "container", name, err.Error(), err)
	}
	for _, item := range containers {
		for _, candidate := range item.Names {
			if strings.TrimPrefix(candidate, "/") == name {
				info := ContainerInfo{
					ID:     item.ID,
					Name:   name,
					Image:  item.Image,
					State:  item.State,
					Labels: item.Labels,
				}
				return &info, nil
			}
		}
	}
	return nil, nil
}

// RemoveContainer force-removes a container by ID.
func (c *Client) RemoveContainer(ctx context.Context, id string) error {
	if err := c.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return NewEngineError("RemoveContainer", "container", id, err.Error(), err)
	}
	return nil
}

// CreateContainer creates a container from the spec and returns its ID.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	config := &container.Config{
		Image:  spec.Image,
		Labels: spec.Labels,
	}
	for k, v := range spec.Env {
		config.Env = append(config.Env, fmt.Sprintf("%s=%s", k, v))
	}

	hostConfig := &container.HostConfig{
		RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
	}

	if len(spec.Ports) > 0 {
		portBindings := nat.PortMap{}
		exposedPorts := nat.PortSet{}
		for _, p := range spec.Ports {
			proto := p.Protocol
			if proto == "" {
				proto = "tcp"
			}
			port := nat.Port(fmt.Sprintf("%d/%s", p.ContainerPort, proto))
			exposedPorts[port] = struct{}{}

			hostPort := ""
			if p.HostPort > 0 {
				hostPort = fmt.Sprintf("%d", p.HostPort)
			}
			portBindings[port] = append(portBindings[port], nat.PortBinding{
				HostIP:   p.HostIP,
				HostPort: hostPort,
			})
		}
		config.ExposedPorts = exposedPorts
		hostConfig.PortBindings = portBindings
	}

	for _, m := range spec.Mounts {
		mountType := mount.TypeVolume
		if m.Bind {
			mountType = mount.TypeBind
		}
		hostConfig.Mounts = append(hostConfig.Mounts, mount.Mount{
			Type:     mountType,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}

	var networkConfig *network.NetworkingConfig
	if len(spec.Networks) > 0 {
		endpoints := make(map[string]*network.EndpointSettings, len(spec.Networks))
		for _, netName := range spec.Networks {
			endpoints[netName] = &network.EndpointSettings{}
		}
		networkConfig = &network.NetworkingConfig{EndpointsConfig: endpoints}
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		return "", NewEngineError("CreateContainer", "container", spec.Name, err.Error(), err)
	}
	return resp.ID, nil
}

// StartContainer starts a container by ID.
func (c *Client) StartContainer(ctx context.Context, id string) error {
	if err := c.cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return NewEngineError("StartContainer", "container", id, err.Error(), err)
	}
	return nil
}
