// Package openai implements the OpenAI Chat Completions backend. The client
// is also used for any endpoint speaking the same protocol (see the gemini
// module).
package openai

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/flemzord/blogclaw/internal/provider"
)

func init() {
	provider.Register(provider.Info{
		Kind:         "openai",
		DisplayName:  "OpenAI",
		Aliases:      []string{"gpt", "chatgpt"},
		DefaultModel: DefaultModel,
		New: func(opts provider.Options) (provider.Provider, error) {
			return New(Config{
				APIKey:    opts.APIKey,
				Model:     opts.Model,
				BaseURL:   opts.BaseURL,
				MaxTokens: opts.MaxTokens,
				Timeout:   opts.Timeout,
				JSONMode:  true,
			}, opts.HTTPClient, opts.Logger)
		},
	})
}

// Compile-time interface guards.
var (
	_ provider.Provider      = (*Provider)(nil)
	_ provider.HealthChecker = (*Provider)(nil)
)

// Provider talks to an OpenAI-compatible /chat/completions endpoint.
type Provider struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// New validates cfg and builds a Provider. A nil client gets one with the
// configured timeout.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*Provider, error) {
	cfg.defaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		config: cfg,
		logger: logger.With("component", "provider", "provider", cfg.Name),
		client: client,
	}, nil
}
