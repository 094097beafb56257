package openai

import (
	"errors"
	"fmt"
	"time"
)

// Defaults for the hosted OpenAI API.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 2 * time.Minute
)

// Config holds the configuration of an OpenAI-compatible chat client.
type Config struct {
	// Name prefixes error messages and log lines. Defaults to "openai".
	Name string

	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration

	// JSONMode sends response_format {"type":"json_object"} when the
	// request asks for it. Some compatible endpoints reject the field.
	JSONMode bool
}

// defaults fills zero-valued fields with sensible defaults.
func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "openai"
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s: api key is required", c.Name)
	}
	if c.MaxTokens < 0 {
		return errors.New(c.Name + ": max_tokens must not be negative")
	}
	return nil
}
