// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	History   HistoryConfig   `mapstructure:"history"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Log       LogConfig       `mapstructure:"log"`
	Gate      GateConfig      `mapstructure:"gate"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Inventory InventoryConfig `mapstructure:"inventory"`
}

// ServerConfig holds HTTP server configuration for serve mode.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// SharedSecret enables bearer-token authentication when set.
	SharedSecret string `mapstructure:"shared_secret"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HistoryConfig holds run-history persistence configuration.
type HistoryConfig struct {
	// DSN is the SQLite database path. Empty disables run history.
	DSN string `mapstructure:"dsn"`
}

// DockerConfig holds Docker client configuration.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GateConfig holds the production authorization toggle configuration.
type GateConfig struct {
	// TogglePath is the sentinel file whose presence opens the gate.
	TogglePath string `mapstructure:"toggle_path"`
}

// TemplatesConfig holds artifact template configuration.
type TemplatesConfig struct {
	// Dir is the directory holding artifact templates.
	Dir string `mapstructure:"dir"`
}

// InventoryConfig holds remote inventory provider configuration.
type InventoryConfig struct {
	// Provider selects the remote backend: "", "aws", "digitalocean",
	// "hetzner". Empty means local engine only.
	Provider string `mapstructure:"provider"`

	// Region applies to the aws provider.
	Region string `mapstructure:"region"`

	// AccessKeyID and SecretAccessKey apply to the aws provider.
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// APIToken applies to digitalocean and hetzner.
	APIToken string `mapstructure:"api_token"`
}

// =============================================================================
// Config Loading
// =============================================================================

// Load loads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.shared_secret", "")
	v.SetDefault("history.dsn", "./data/stackpact.db")
	v.SetDefault("docker.host", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("gate.toggle_path", ".stackpact-armed")
	v.SetDefault("templates.dir", "./templates")
	v.SetDefault("inventory.provider", "")
	v.SetDefault("inventory.region", "")
	v.SetDefault("inventory.access_key_id", "")
	v.SetDefault("inventory.secret_access_key", "")
	v.SetDefault("inventory.api_token", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A present-but-broken file is an error; a missing file
			// falls back to defaults.
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STACKPACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
