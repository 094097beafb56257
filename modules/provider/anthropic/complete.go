package anthropic

import (
	"context"
	"errors"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/flemzord/blogclaw/internal/provider"
)

// Complete sends a synchronous completion request to the Messages API.
func (a *Anthropic) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	params := convertRequest(req, &a.config, a.logger)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}

	resp := convertResponse(msg, req.JSONMode)
	if strings.TrimSpace(strings.TrimPrefix(resp.Content, jsonPrefill)) == "" {
		return provider.CompletionResponse{}, errors.New("anthropic: response has no text content")
	}
	a.logger.Debug("completion received",
		"model", a.config.Model,
		"finish_reason", resp.FinishReason,
		"total_tokens", resp.Usage.TotalTokens,
	)
	return resp, nil
}

// HealthCheck sends a 1-token completion. The API has no cheaper
// authenticated check.
func (a *Anthropic) HealthCheck(ctx context.Context) error {
	_, err := a.client.Messages.New(ctx, sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(a.config.Model),
		MaxTokens: 1,
		Messages: []sdkanthropic.MessageParam{
			sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock("hi")),
		},
	})
	return mapError(err)
}
