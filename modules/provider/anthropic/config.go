package anthropic

import "time"

// DefaultModel is the model used when none is specified. Pinned to a dated
// release for reproducibility.
const DefaultModel = "claude-sonnet-4-5-20250929"

// defaultMaxTokens leaves room for a 2000-word post in HTML.
const defaultMaxTokens = 8192

// defaultTimeout bounds a whole Messages call.
const defaultTimeout = 2 * time.Minute

// Config holds the Anthropic backend settings.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}
