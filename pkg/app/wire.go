package app

import (
	"fmt"
	"log/slog"

	"github.com/flemzord/blogclaw/internal/config"
	"github.com/flemzord/blogclaw/internal/generator"
	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/security"
	"github.com/flemzord/blogclaw/internal/settings"
	"github.com/flemzord/blogclaw/modules/publisher/wordpress"

	// Compiled-in LLM backends.
	_ "github.com/flemzord/blogclaw/modules/provider/anthropic"
	_ "github.com/flemzord/blogclaw/modules/provider/gemini"
	_ "github.com/flemzord/blogclaw/modules/provider/openai"
	_ "github.com/flemzord/blogclaw/modules/provider/simulated"
)

// DefaultProvider is used when the settings file names no provider.
const DefaultProvider = "OpenAI"

// buildProvider creates the LLM backend named in the settings.
func buildProvider(cfg *config.Config, creds settings.Credentials, logger *slog.Logger) (provider.Provider, error) {
	name := creds.Provider
	if name == "" {
		name = DefaultProvider
	}
	p, err := provider.New(name, provider.Options{
		APIKey:    creds.APIKey,
		Model:     cfg.Generator.Model,
		BaseURL:   cfg.Generator.BaseURL,
		Timeout:   cfg.Generator.Timeout,
		MaxTokens: cfg.Generator.MaxTokens,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building provider: %w", err)
	}
	return p, nil
}

// buildPublisher creates the WordPress client from the settings. The site
// must pass the configured filter before credentials are attached to it.
func buildPublisher(cfg *config.Config, creds settings.Credentials, logger *slog.Logger) (*wordpress.Publisher, error) {
	if creds.SiteURL != "" {
		filter := security.NewSiteFilter(security.SiteFilterConfig{
			AllowDomains:  cfg.Publisher.AllowDomains,
			DenyDomains:   cfg.Publisher.DenyDomains,
			AllowInsecure: cfg.Publisher.AllowInsecure,
		})
		if err := filter.Check(creds.SiteURL); err != nil {
			return nil, fmt.Errorf("building publisher: %w", err)
		}
	}
	pub, err := wordpress.New(wordpress.Config{
		SiteURL:     creds.SiteURL,
		User:        creds.User,
		AppPassword: creds.AppPassword,
	}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("building publisher: %w", err)
	}
	return pub, nil
}

// buildCollaborators returns the generator and publisher for creds.
func buildCollaborators(cfg *config.Config, creds settings.Credentials, logger *slog.Logger) (*generator.Generator, *wordpress.Publisher, error) {
	p, err := buildProvider(cfg, creds, logger)
	if err != nil {
		return nil, nil, err
	}
	pub, err := buildPublisher(cfg, creds, logger)
	if err != nil {
		return nil, nil, err
	}
	return generator.New(p, cfg.Generator.MaxTokens, logger), pub, nil
}
