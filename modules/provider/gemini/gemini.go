// Package gemini registers Google Gemini through its OpenAI-compatible
// endpoint, reusing the openai client.
package gemini

import (
	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/modules/provider/openai"
)

// Defaults for the Gemini API.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel   = "gemini-flash-latest"
)

func init() {
	provider.Register(provider.Info{
		Kind:         "gemini",
		DisplayName:  "Google Gemini",
		Aliases:      []string{"Gemini", "google"},
		DefaultModel: DefaultModel,
		New:          New,
	})
}

// New builds a Gemini provider from opts.
func New(opts provider.Options) (provider.Provider, error) {
	cfg := openai.Config{
		Name:      "gemini",
		APIKey:    opts.APIKey,
		Model:     opts.Model,
		BaseURL:   opts.BaseURL,
		MaxTokens: opts.MaxTokens,
		Timeout:   opts.Timeout,
		JSONMode:  true,
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return openai.New(cfg, opts.HTTPClient, opts.Logger)
}
