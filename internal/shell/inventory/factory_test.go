package inventory

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("aws", func(t *testing.T) {
		p, err := NewProvider("aws", Credentials{AccessKeyID: "AKIA", SecretAccessKey: "secret"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &AWSProvider{}, p)
	})

	t.Run("aws missing credentials", func(t *testing.T) {
		_, err := NewProvider("aws", Credentials{}, logger)
		assert.Error(t, err)
	})

	t.Run("digitalocean", func(t *testing.T) {
		p, err := NewProvider("digitalocean", Credentials{APIToken: "token"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &DigitalOceanProvider{}, p)
	})

	t.Run("hetzner", func(t *testing.T) {
		p, err := NewProvider("hetzner", Credentials{APIToken: "token"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &HetznerProvider{}, p)
	})

	t.Run("token required", func(t *testing.T) {
		_, err := NewProvider("hetzner", Credentials{}, logger)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewProvider("openstack", Credentials{}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider type")
	})
}

func TestDropletTag(t *testing.T) {
	assert.Equal(t, "pact-stack-acctdemo", DropletTag("acctdemo"))
}
