package gateway

import (
	"errors"
	"fmt"
	"net"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultRunRatePerMinute caps manual runs triggered over HTTP.
const DefaultRunRatePerMinute = 2

// Config holds HTTP gateway configuration.
type Config struct {
	Enabled          bool          `yaml:"enabled"`
	Bind             string        `yaml:"bind"`
	Auth             AuthConfig    `yaml:"auth"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	RunRatePerMinute int           `yaml:"run_rate_per_minute"`
}

// ParseConfig decodes the gateway section of the agent config and fills
// defaults. An empty node yields a disabled gateway.
func ParseConfig(node *yaml.Node) (Config, error) {
	var cfg Config
	if node != nil && node.Kind != 0 {
		if err := node.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("gateway: decode config: %w", err)
		}
	}
	cfg.defaults()
	return cfg, nil
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.RunRatePerMinute <= 0 {
		c.RunRatePerMinute = DefaultRunRatePerMinute
	}
}

// Validate checks the bind address. Without auth the gateway may only
// listen on loopback.
func (c Config) Validate() error {
	host, _, err := net.SplitHostPort(c.Bind)
	if err != nil {
		return errors.New("gateway: invalid bind address: " + c.Bind)
	}
	if c.Auth.IsConfigured() {
		return nil
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("gateway: auth is required to bind %s", c.Bind)
}

// AuthConfig configures authentication for the control endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token"`
	BasicUser   string `yaml:"basic_user"`
	BasicPass   string `yaml:"basic_pass"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}
