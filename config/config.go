// Package config loads and validates the syndication service configuration
// from a YAML file: platform identity, NATS connection, remote-call policy,
// and the syndication profiles.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
)

// Config is the complete service configuration.
type Config struct {
	Platform PlatformConfig    `yaml:"platform"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	NATS     NATSConfig        `yaml:"nats"`
	Remote   RemoteConfig      `yaml:"remote"`
	Worker   WorkerConfig      `yaml:"worker"`
	HTTP     HTTPConfig        `yaml:"http"`
	Profiles []profile.Profile `yaml:"profiles"`
}

// PlatformConfig identifies this deployment.
type PlatformConfig struct {
	ID          string `yaml:"id"`
	Environment string `yaml:"environment,omitempty"`
}

// CatalogConfig points at the local catalog's action API.
type CatalogConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key,omitempty"`
}

// NATSConfig defines the NATS connection settings.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	Name          string        `yaml:"name,omitempty"`
	Username      string        `yaml:"username,omitempty"`
	Password      string        `yaml:"password,omitempty"`
	Token         string        `yaml:"token,omitempty"`
	MaxReconnects int           `yaml:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `yaml:"reconnect_wait,omitempty"`
}

// RemoteConfig governs outbound calls to remote catalogs.
type RemoteConfig struct {
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// RateLimit caps outbound requests per second per profile. Zero
	// disables limiting.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
	Burst     int     `yaml:"burst,omitempty"`
}

// WorkerConfig governs task consumption.
type WorkerConfig struct {
	// MaxDeliver bounds queue redelivery of a failing task.
	MaxDeliver int `yaml:"max_deliver,omitempty"`
}

// HTTPConfig configures the metrics/health listener.
type HTTPConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// Default returns the configuration defaults applied before file values.
func Default() Config {
	return Config{
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Name:          "syndicate",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Remote: RemoteConfig{
			Timeout:   30 * time.Second,
			RateLimit: 0,
			Burst:     1,
		},
		Worker: WorkerConfig{
			MaxDeliver: 5,
		},
		HTTP: HTTPConfig{
			Listen: ":9090",
		},
	}
}

// Load reads, parses, and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
	}

	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Load", "parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and normalizes defaulted fields.
func (c *Config) Validate() error {
	if c.Platform.ID == "" {
		return errors.WrapInvalid(
			fmt.Errorf("platform.id is required"), "Config", "Validate", "check platform")
	}

	if c.Catalog.URL == "" {
		return errors.WrapInvalid(
			fmt.Errorf("catalog.url is required"), "Config", "Validate", "check catalog")
	}
	if !strings.HasPrefix(c.Catalog.URL, "http://") && !strings.HasPrefix(c.Catalog.URL, "https://") {
		return errors.WrapInvalid(
			fmt.Errorf("catalog.url %q must use the http:// or https:// scheme", c.Catalog.URL),
			"Config", "Validate", "check catalog")
	}

	if c.NATS.URL == "" {
		return errors.WrapInvalid(
			fmt.Errorf("nats.url is required"), "Config", "Validate", "check NATS")
	}
	if !strings.HasPrefix(c.NATS.URL, "nats://") && !strings.HasPrefix(c.NATS.URL, "tls://") {
		return errors.WrapInvalid(
			fmt.Errorf("nats.url %q must use the nats:// or tls:// scheme", c.NATS.URL),
			"Config", "Validate", "check NATS")
	}

	if c.Remote.Timeout <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("remote.timeout must be positive"), "Config", "Validate", "check remote")
	}
	if c.Remote.RateLimit < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("remote.rate_limit cannot be negative"), "Config", "Validate", "check remote")
	}
	if c.Worker.MaxDeliver <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("worker.max_deliver must be positive"), "Config", "Validate", "check worker")
	}

	if err := ValidateProfiles(c.Profiles); err != nil {
		return err
	}

	return nil
}
