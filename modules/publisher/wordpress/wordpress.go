// Package wordpress publishes posts through the WordPress REST API using
// application-password Basic authentication.
package wordpress

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flemzord/blogclaw/internal/publisher"
)

const (
	postsPath = "/wp-json/wp/v2/posts"
	mePath    = "/wp-json/wp/v2/users/me?context=edit"

	defaultTimeout = 30 * time.Second

	// maxResponseSize is the maximum response body size (10 MB).
	maxResponseSize = 10 * 1024 * 1024
)

// ErrNoSiteURL is returned by New when the site URL is empty.
var ErrNoSiteURL = errors.New("wordpress: site URL is required")

// Config holds the site address and credentials.
type Config struct {
	SiteURL     string
	User        string
	AppPassword string
	Timeout     time.Duration
}

// Publisher talks to one WordPress site.
type Publisher struct {
	baseURL string
	auth    string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Publisher. A nil client gets one with cfg.Timeout.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*Publisher, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	if base == "" {
		return nil, ErrNoSiteURL
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		baseURL: base,
		auth:    "Basic " + BasicAuth(cfg.User, cfg.AppPassword),
		client:  client,
		logger:  logger.With("component", "wordpress"),
	}, nil
}

// BasicAuth returns the base64 token for user:password.
func BasicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

// Interface guards.
var (
	_ publisher.Publisher = (*Publisher)(nil)
	_ publisher.Verifier  = (*Publisher)(nil)
)
