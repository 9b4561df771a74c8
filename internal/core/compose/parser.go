package compose

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Parser Functions
// =============================================================================

// ParseArtifact parses a rendered compose-shaped artifact into a ParsedSpec.
// This is a pure function - no I/O, no side effects.
//
// The artifact must already be fully rendered: interpolation is skipped so a
// stray ${VAR:-default} is preserved for the validator to see rather than
// silently resolved from the host environment.
func ParseArtifact(name, yamlContent string) (*ParsedSpec, error) {
	if strings.TrimSpace(yamlContent) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadProject(yamlContent)
	if err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	spec := &ParsedSpec{
		Artifact: name,
		Services: make([]Service, 0, len(project.Services)),
	}

	for _, svc := range project.Services {
		converted, err := convertService(svc)
		if err != nil {
			return nil, err
		}
		spec.Services = append(spec.Services, converted)
	}
	sort.Slice(spec.Services, func(i, j int) bool {
		return spec.Services[i].Name < spec.Services[j].Name
	})

	for netName, net := range project.Networks {
		spec.Networks = append(spec.Networks, Network{
			Name:     netName,
			Driver:   net.Driver,
			External: bool(net.External),
			Labels:   net.Labels,
		})
	}
	sort.Slice(spec.Networks, func(i, j int) bool {
		return spec.Networks[i].Name < spec.Networks[j].Name
	})

	for volName, vol := range project.Volumes {
		converted := Volume{
			Name:     volName,
			External: bool(vol.External),
			Labels:   vol.Labels,
		}
		// An explicit runtime name wins over the compose key.
		if vol.Name != "" {
			converted.Name = vol.Name
		}
		spec.Volumes = append(spec.Volumes, converted)
	}
	sort.Slice(spec.Volumes, func(i, j int) bool {
		return spec.Volumes[i].Name < spec.Volumes[j].Name
	})

	for secretName, secret := range project.Secrets {
		spec.Secrets = append(spec.Secrets, Secret{
			Name:     secretName,
			File:     secret.File,
			External: bool(secret.External),
		})
	}
	sort.Slice(spec.Secrets, func(i, j int) bool {
		return spec.Secrets[i].Name < spec.Secrets[j].Name
	})

	return spec, nil
}

// loadProject loads the artifact through compose-go.
func loadProject(yamlContent string) (*types.Project, error) {
	var dict map[string]interface{}
	if err := yaml.Unmarshal([]byte(yamlContent), &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: []byte(yamlContent),
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("stackpact-parse", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = true
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}

	return project, nil
}

// convertService converts a compose-go service to the policy view.
func convertService(svc types.ServiceConfig) (Service, error) {
	service := Service{
		Name:        svc.Name,
		Image:       svc.Image,
		Environment: make(map[string]string),
		Labels:      make(map[string]string),
	}

	if service.Image == "" {
		return Service{}, NewParseError("services."+svc.Name, "service must have an image", ErrServiceNoImage)
	}

	for k, v := range svc.Environment {
		if v != nil {
			service.Environment[k] = *v
		}
	}
	for k, v := range svc.Labels {
		service.Labels[k] = v
	}

	for _, p := range svc.Ports {
		var published uint32
		if p.Published != "" {
			if pub, err := strconv.ParseUint(p.Published, 10, 32); err == nil {
				published = uint32(pub)
			}
		}
		service.Ports = append(service.Ports, Port{
			Target:    p.Target,
			Published: published,
			Protocol:  p.Protocol,
			HostIP:    p.HostIP,
		})
	}

	for _, v := range svc.Volumes {
		mount := Mount{
			Source:   v.Source,
			Target:   v.Target,
			ReadOnly: v.ReadOnly,
		}
		switch v.Type {
		case "bind":
			mount.Type = MountTypeBind
		case "volume":
			mount.Type = MountTypeVolume
		case "tmpfs":
			mount.Type = MountTypeTmpfs
		default:
			mount.Type = inferMountType(v.Source)
		}
		service.Mounts = append(service.Mounts, mount)
	}

	for net := range svc.Networks {
		service.Networks = append(service.Networks, net)
	}
	sort.Strings(service.Networks)

	for _, s := range svc.Secrets {
		service.Secrets = append(service.Secrets, s.Source)
	}
	sort.Strings(service.Secrets)

	return service, nil
}

// inferMountType distinguishes bind mounts from named volumes by the shape of
// the source, the way the compose CLI does for short syntax.
func inferMountType(source string) MountType {
	if strings.HasPrefix(source, "./") ||
		strings.HasPrefix(source, "/") ||
		strings.HasPrefix(source, "~") ||
		strings.HasPrefix(source, "..") ||
		windowsDriveRegex(source) {
		return MountTypeBind
	}
	return MountTypeVolume
}

// windowsDriveRegex reports whether the source starts with a Windows drive
// prefix like C:\ or //c/. Such sources are bind mounts by definition.
func windowsDriveRegex(source string) bool {
	if strings.HasPrefix(source, "//") {
		return true
	}
	if len(source) >= 3 && source[1] == ':' && (source[2] == '\\' || source[2] == '/') {
		return true
	}
	return false
}
