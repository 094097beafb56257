package provider

import "errors"

// Sentinel errors for provider operations.
var (
	// ErrRateLimit indicates the provider returned a rate limit response.
	ErrRateLimit = errors.New("provider rate limited")

	// ErrProviderDown indicates the provider is unreachable or failing.
	ErrProviderDown = errors.New("provider unavailable")

	// ErrAuth indicates the provider rejected the API key.
	ErrAuth = errors.New("provider rejected credentials")

	// ErrNoProvider indicates no provider kind was configured.
	ErrNoProvider = errors.New("no provider configured")

	// ErrUnknownKind indicates the configured provider kind is not registered.
	ErrUnknownKind = errors.New("unknown provider kind")
)

// Classify returns a short, stable label for err suitable for metrics.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrProviderDown):
		return "unavailable"
	case errors.Is(err, ErrNoProvider), errors.Is(err, ErrUnknownKind):
		return "config"
	default:
		return "other"
	}
}
