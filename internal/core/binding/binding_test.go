package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpact/stackpact/internal/core/identity"
)

func devIdentity(t *testing.T) identity.StackIdentity {
	t.Helper()
	id, err := identity.Resolve(map[string]string{
		"STACK":        "acctdemo",
		"LOCAL_DOMAIN": "localtest.me",
	}, identity.EnvDev)
	require.NoError(t, err)
	return id
}

// =============================================================================
// Build Tests
// =============================================================================

func TestBuild_InjectsCanonicalKeys(t *testing.T) {
	b := Build(devIdentity(t), map[string]string{"DB_HOST": "db"})
	assert.Equal(t, "acctdemo", b.PlainValues["STACK"])
	assert.Equal(t, "acctdemo.localtest.me", b.PlainValues["APP_HOST"])
	assert.Equal(t, "acctdemo", b.PlainValues["COMPOSE_PROJECT_NAME"])
	assert.Equal(t, "localtest.me", b.PlainValues["LOCAL_DOMAIN"])
	assert.Equal(t, "db", b.PlainValues["DB_HOST"])
}

func TestBuild_PassthroughUnrecognizedKeys(t *testing.T) {
	b := Build(devIdentity(t), map[string]string{"CUSTOM_FLAG": "on"})
	assert.Equal(t, "on", b.PlainValues["CUSTOM_FLAG"])
}

func TestBuild_RoutesSecretKeys(t *testing.T) {
	b := Build(devIdentity(t), map[string]string{
		"DB_PASSWORD": "secret://vault/db",
		"DB_HOST":     "db",
	})
	assert.Equal(t, "secret://vault/db", b.SecretRefs["DB_PASSWORD"])
	assert.NotContains(t, b.PlainValues, "DB_PASSWORD")
	assert.Equal(t, "db", b.PlainValues["DB_HOST"])
}

func TestBuild_CanonicalKeysBeatRawEcho(t *testing.T) {
	// Resolve already rejects conflicting derived fields; an equal echo
	// simply collapses into the canonical value.
	raw := map[string]string{"APP_HOST": "acctdemo.localtest.me"}
	b := Build(devIdentity(t), raw)
	assert.Equal(t, "acctdemo.localtest.me", b.PlainValues["APP_HOST"])
}

func TestValues_MergesBothPartitions(t *testing.T) {
	b := Build(devIdentity(t), map[string]string{
		"DB_HOST":     "db",
		"DB_PASSWORD": "secret://vault/db",
	})
	values := b.Values()
	assert.Equal(t, "db", values["DB_HOST"])
	assert.Equal(t, "secret://vault/db", values["DB_PASSWORD"])
	assert.Equal(t, "acctdemo.localtest.me", values["APP_HOST"])
}

func TestKeys_Sorted(t *testing.T) {
	b := Build(devIdentity(t), map[string]string{"ZED": "1", "ALPHA": "2"})
	keys := b.Keys()
	assert.Contains(t, keys, "ALPHA")
	assert.Contains(t, keys, "ZED")
	assert.True(t, sortedStrings(keys))
}

func sortedStrings(values []string) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Secret Classification Tests
// =============================================================================

func TestIsSecretKey_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"password", "DB_PASSWORD", true},
		{"password-file", "DB_PASSWORD_FILE", true},
		{"secret", "SESSION_SECRET", true},
		{"token", "GITHUB_TOKEN", true},
		{"api-key", "STRIPE_API_KEY", true},
		{"private-key", "TLS_PRIVATE_KEY", true},
		{"lowercase", "db_password", true},
		{"host", "DB_HOST", false},
		{"user", "DB_USER", false},
		{"image", "APP_IMAGE", false},
		{"plain-key-suffix", "CACHE_KEY", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSecretKey(tt.key))
		})
	}
}

func TestIsFileSourced_TableDriven(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  bool
	}{
		{"file-suffix-key", "DB_PASSWORD_FILE", "/etc/secrets/db", true},
		{"file-scheme", "DB_PASSWORD", "file:///etc/secrets/db", true},
		{"file-colon", "DB_PASSWORD", "file:/etc/secrets/db", true},
		{"run-secrets-path", "DB_PASSWORD", "/run/secrets/db_password", true},
		{"relative-secrets-dir", "DB_PASSWORD", "./secrets/db", true},
		{"vault-ref", "DB_PASSWORD", "secret://vault/db", false},
		{"literal", "DB_PASSWORD", "hunter2", false},
		{"env-ref", "DB_PASSWORD", "arn:aws:secretsmanager:...", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFileSourced(tt.key, tt.value))
		})
	}
}
