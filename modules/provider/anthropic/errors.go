package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/flemzord/blogclaw/internal/provider"
)

// mapError converts an SDK error into the matching provider sentinel.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *sdkanthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic: %w: %w", provider.ErrProviderDown, err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("anthropic: %w: %s", provider.ErrRateLimit, apiErr.Error())
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("anthropic: %w: %s", provider.ErrAuth, apiErr.Error())
	case 529, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("anthropic: %w: %s", provider.ErrProviderDown, apiErr.Error())
	default:
		return fmt.Errorf("anthropic: HTTP %d: %w", apiErr.StatusCode, err)
	}
}
