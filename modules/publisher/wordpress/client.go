package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/flemzord/blogclaw/internal/publisher"
)

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	Categories []int  `json:"categories,omitempty"`
	Tags       []int  `json:"tags,omitempty"`
}

// Publish creates a post. Status defaults to draft. There is no retry.
func (p *Publisher) Publish(ctx context.Context, d publisher.Draft) (publisher.Result, error) {
	if d.Status == "" {
		d.Status = publisher.StatusDraft
	}

	body, err := p.do(ctx, http.MethodPost, postsPath, postRequest{
		Title:      d.Title,
		Content:    d.Content,
		Status:     d.Status,
		Categories: d.Categories,
		Tags:       d.Tags,
	})
	if err != nil {
		return publisher.Result{}, err
	}

	var res publisher.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return publisher.Result{}, &publisher.Error{Err: fmt.Errorf("decode response: %w", err)}
	}
	if res.ID == 0 {
		return publisher.Result{}, &publisher.Error{Err: errors.New("response has no post id"), Body: string(body)}
	}

	p.logger.Debug("post created", "post_id", res.ID, "status", res.Status)
	return res, nil
}

// Verify checks the credentials against the current-user endpoint, which
// requires authentication in edit context.
func (p *Publisher) Verify(ctx context.Context) error {
	_, err := p.do(ctx, http.MethodGet, mePath, nil)
	return err
}

// do sends an authenticated request and returns the body of a 2xx reply.
// Every failure is a *publisher.Error.
func (p *Publisher) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &publisher.Error{Err: fmt.Errorf("marshal request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return nil, &publisher.Error{Err: fmt.Errorf("create request: %w", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", p.auth)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &publisher.Error{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &publisher.Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &publisher.Error{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
