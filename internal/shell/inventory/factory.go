package inventory

import (
	"fmt"
	"log/slog"
)

// NewProvider creates a remote inventory provider by type name.
func NewProvider(providerType string, creds Credentials, logger *slog.Logger) (Provider, error) {
	switch providerType {
	case "aws":
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return nil, fmt.Errorf("aws provider requires access key credentials")
		}
		region := creds.Region
		if region == "" {
			region = "us-east-1"
		}
		return NewAWSProvider(region, creds.AccessKeyID, creds.SecretAccessKey, logger), nil

	case "digitalocean":
		if creds.APIToken == "" {
			return nil, fmt.Errorf("digitalocean provider requires an API token")
		}
		return NewDigitalOceanProvider(creds.APIToken, logger), nil

	case "hetzner":
		if creds.APIToken == "" {
			return nil, fmt.Errorf("hetzner provider requires an API token")
		}
		return NewHetznerProvider(creds.APIToken, logger), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
