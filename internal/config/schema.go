// Package config handles YAML configuration loading, environment variable
// expansion, defaults and structural validation for blogclaw.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultIntervalHours  = 24
	MaxIntervalHours      = 366 * 24
	DefaultWordCount      = 500
	DefaultTone           = "Professional"
	DefaultPostStatus     = "draft"
	DefaultStopTimeout    = time.Second
	DefaultGenTimeout     = 2 * time.Minute
	DefaultActivityLines  = 200
	DefaultServiceName    = "blogclaw"
	DefaultSettingsFile   = "agent_config.json"
	DefaultTopic          = "Tech"
	MinWordCount          = 300
	MaxWordCount          = 2000
	supportedConfigFormat = "1"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// SettingsPath locates the JSON settings file holding credentials.
	// Relative paths are resolved against the config file's directory.
	SettingsPath string `yaml:"settings_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Schedule  ScheduleConfig  `yaml:"schedule"`
	Generator GeneratorConfig `yaml:"generator"`

	// Gateway is decoded by the gateway package itself.
	Gateway yaml.Node `yaml:"gateway"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
	Activity  ActivityConfig  `yaml:"activity"`
	Publisher PublisherConfig `yaml:"publisher"`
}

// ScheduleConfig controls the recurring generate-and-publish job.
type ScheduleConfig struct {
	IntervalHours int    `yaml:"interval_hours"`
	Topic         string `yaml:"topic"`
	WordCount     int    `yaml:"word_count"`
	Tone          string `yaml:"tone"`
	Instructions  string `yaml:"instructions"`

	// PostStatus is the WordPress status given to new posts.
	PostStatus string `yaml:"post_status"`

	Categories []int `yaml:"categories,omitempty"`
	Tags       []int `yaml:"tags,omitempty"`

	// Autostart starts the scheduler as soon as the process is up.
	Autostart bool `yaml:"autostart"`

	// StopTimeout bounds how long Stop waits for the timer goroutine.
	StopTimeout time.Duration `yaml:"stop_timeout"`
}

// GeneratorConfig overrides provider defaults. The provider kind and API
// key come from the settings file.
type GeneratorConfig struct {
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// TelemetryConfig configures OpenTelemetry tracing. Tracing is disabled
// when OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// PublisherConfig restricts which WordPress sites receive credentials.
type PublisherConfig struct {
	AllowDomains  []string `yaml:"allow_domains,omitempty"`
	DenyDomains   []string `yaml:"deny_domains,omitempty"`
	AllowInsecure bool     `yaml:"allow_insecure"`
}

// ActivityConfig sizes the in-memory activity log.
type ActivityConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: supportedConfigFormat}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = supportedConfigFormat
	}
	if c.SettingsPath == "" {
		c.SettingsPath = DefaultSettingsFile
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	s := &c.Schedule
	if s.IntervalHours == 0 {
		s.IntervalHours = DefaultIntervalHours
	}
	if s.WordCount == 0 {
		s.WordCount = DefaultWordCount
	}
	if s.Tone == "" {
		s.Tone = DefaultTone
	}
	if s.PostStatus == "" {
		s.PostStatus = DefaultPostStatus
	}
	if s.StopTimeout <= 0 {
		s.StopTimeout = DefaultStopTimeout
	}

	if c.Generator.Timeout <= 0 {
		c.Generator.Timeout = DefaultGenTimeout
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.Activity.Capacity <= 0 {
		c.Activity.Capacity = DefaultActivityLines
	}
}
