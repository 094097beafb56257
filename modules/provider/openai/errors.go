package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/flemzord/blogclaw/internal/provider"
)

// mapHTTPError maps an HTTP status code and response body to a provider
// sentinel error. Returns nil for 2xx status codes.
func (p *Provider) mapHTTPError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	msg := decodeAPIError(body)
	name := p.config.Name

	switch {
	case statusCode == 429:
		return fmt.Errorf("%s: %w: %s", name, provider.ErrRateLimit, msg)
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("%s: %w: %s", name, provider.ErrAuth, msg)
	case statusCode >= 500:
		return fmt.Errorf("%s: %w: %s", name, provider.ErrProviderDown, msg)
	default:
		return fmt.Errorf("%s: HTTP %d: %s", name, statusCode, msg)
	}
}

func decodeAPIError(body []byte) string {
	var single apiError
	if json.Unmarshal(body, &single) == nil && single.Error.Message != "" {
		return single.Error.Message
	}
	var list []apiError
	if json.Unmarshal(body, &list) == nil && len(list) > 0 && list[0].Error.Message != "" {
		return list[0].Error.Message
	}
	return string(body)
}

// mapConnectionError maps network-level errors to provider sentinel errors.
// Context errors pass through unchanged.
func (p *Provider) mapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", p.config.Name, provider.ErrProviderDown, err)
	}
	return fmt.Errorf("%s: %w", p.config.Name, err)
}
