// Package anthropic implements the Anthropic Messages API backend on top of
// the official SDK.
package anthropic

import (
	"errors"
	"log/slog"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/flemzord/blogclaw/internal/provider"
)

func init() {
	provider.Register(provider.Info{
		Kind:         "anthropic",
		DisplayName:  "Anthropic",
		Aliases:      []string{"Claude"},
		DefaultModel: DefaultModel,
		New: func(opts provider.Options) (provider.Provider, error) {
			return New(Config{
				APIKey:    opts.APIKey,
				Model:     opts.Model,
				BaseURL:   opts.BaseURL,
				MaxTokens: opts.MaxTokens,
				Timeout:   opts.Timeout,
			}, opts.HTTPClient, opts.Logger)
		},
	})
}

// Interface guards.
var (
	_ provider.Provider      = (*Anthropic)(nil)
	_ provider.HealthChecker = (*Anthropic)(nil)
)

// Anthropic implements provider.Provider using the Messages API.
type Anthropic struct {
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
}

// New builds an Anthropic provider. SDK retries are disabled; a failed
// generation is reported, never retried.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Anthropic, error) {
	cfg.defaults()
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := sdkanthropic.NewClient(opts...)
	return &Anthropic{
		config: cfg,
		client: &client,
		logger: logger.With("component", "provider", "provider", "anthropic"),
	}, nil
}

// ModelName implements provider.Provider.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}
