package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flemzord/blogclaw/internal/provider"
)

// maxResponseSize is the maximum response body size (10 MB).
const maxResponseSize = 10 * 1024 * 1024

// buildChatRequest merges request-level overrides with config defaults.
func (p *Provider) buildChatRequest(req provider.CompletionRequest) chatRequest {
	cr := chatRequest{
		Model:       p.config.Model,
		Messages:    toMessages(req.Messages),
		Temperature: req.Temperature,
	}

	switch {
	case req.MaxTokens > 0:
		cr.MaxTokens = req.MaxTokens
	case p.config.MaxTokens > 0:
		cr.MaxTokens = p.config.MaxTokens
	}

	if req.JSONMode && p.config.JSONMode {
		cr.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return cr
}

// newHTTPRequest creates an authenticated request. A nil payload sends no body.
func (p *Provider) newHTTPRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", p.config.Name, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", p.config.Name, err)
	}

	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	return httpReq, nil
}

// do sends the request and returns the body (capped at maxResponseSize) and
// status code.
func (p *Provider) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	httpReq, err := p.newHTTPRequest(ctx, method, path, payload)
	if err != nil {
		return nil, 0, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, 0, p.mapConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: read response: %w", p.config.Name, err)
	}

	return body, resp.StatusCode, nil
}

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	cr := p.buildChatRequest(req)

	body, statusCode, err := p.do(ctx, http.MethodPost, "/chat/completions", cr)
	if err != nil {
		return provider.CompletionResponse{}, err
	}

	if httpErr := p.mapHTTPError(statusCode, body); httpErr != nil {
		return provider.CompletionResponse{}, httpErr
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return provider.CompletionResponse{}, fmt.Errorf("%s: unmarshal response: %w", p.config.Name, err)
	}
	if len(resp.Choices) == 0 {
		return provider.CompletionResponse{}, fmt.Errorf("%s: response has no choices", p.config.Name)
	}

	out := fromResponse(&resp)
	p.logger.Debug("completion received",
		"model", p.config.Model,
		"finish_reason", out.FinishReason,
		"total_tokens", out.Usage.TotalTokens,
	)
	return out, nil
}

// HealthCheck lists models, which verifies the key without spending tokens.
func (p *Provider) HealthCheck(ctx context.Context) error {
	body, statusCode, err := p.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return err
	}
	return p.mapHTTPError(statusCode, body)
}

// ModelName returns the configured model identifier.
func (p *Provider) ModelName() string {
	return p.config.Model
}
