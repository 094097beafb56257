package security

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrSiteBlocked is returned when a publishing target is denied.
var ErrSiteBlocked = errors.New("site blocked by filter")

// SiteFilterConfig restricts which sites credentials may be sent to.
type SiteFilterConfig struct {
	// AllowDomains limits publishing to these domains and their
	// subdomains. Empty allows any domain.
	AllowDomains []string

	// DenyDomains takes precedence over AllowDomains.
	DenyDomains []string

	// AllowInsecure permits plain http to non-loopback hosts.
	AllowInsecure bool
}

// SiteFilter checks site URLs before credentials are attached to them.
type SiteFilter struct {
	allow    []string
	deny     []string
	insecure bool
}

// NewSiteFilter creates a filter from cfg.
func NewSiteFilter(cfg SiteFilterConfig) *SiteFilter {
	return &SiteFilter{
		allow:    normalizeDomains(cfg.AllowDomains),
		deny:     normalizeDomains(cfg.DenyDomains),
		insecure: cfg.AllowInsecure,
	}
}

func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Check returns nil if rawURL may receive credentials.
func (f *SiteFilter) Check(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %w", ErrSiteBlocked, err)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrSiteBlocked)
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !f.insecure && !isLoopback(host) {
			return fmt.Errorf("%w: %s (plain http)", ErrSiteBlocked, host)
		}
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrSiteBlocked, parsed.Scheme)
	}

	for _, d := range f.deny {
		if matchDomain(host, d) {
			return fmt.Errorf("%w: %s (denied)", ErrSiteBlocked, host)
		}
	}
	if len(f.allow) == 0 {
		return nil
	}
	for _, a := range f.allow {
		if matchDomain(host, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (not in allow list)", ErrSiteBlocked, host)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// matchDomain reports whether host is domain or one of its subdomains.
// "notexample.com" does not match "example.com".
func matchDomain(host, domain string) bool {
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}
