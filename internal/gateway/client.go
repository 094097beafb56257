package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/flemzord/blogclaw/internal/agent"
)

// maxClientResponse caps responses read by Client.
const maxClientResponse = 1 << 20

// StatusError is returned by Client for non-2xx answers.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running gateway.
type Client struct {
	baseURL string
	auth    AuthConfig
	http    *http.Client
}

// NewClient returns a client for the gateway described by cfg. A wildcard
// bind address is reached over loopback.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	cfg.defaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	host, port, err := net.SplitHostPort(cfg.Bind)
	if err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		cfg.Bind = net.JoinHostPort("127.0.0.1", port)
	}
	return &Client{baseURL: "http://" + cfg.Bind, auth: cfg.Auth, http: httpClient}
}

// NewClientURL returns a client for an explicit base URL.
func NewClientURL(baseURL string, auth AuthConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), auth: auth, http: httpClient}
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

// Start posts to /api/agent/start.
func (c *Client) Start(ctx context.Context, opts agent.StartOptions) (agent.Status, error) {
	var out agent.Status
	err := c.do(ctx, http.MethodPost, "/api/agent/start", startRequest{
		IntervalHours: opts.IntervalHours,
		Topic:         opts.Topic,
		WordCount:     opts.WordCount,
	}, &out)
	return out, err
}

// Stop posts to /api/agent/stop.
func (c *Client) Stop(ctx context.Context) (agent.Status, error) {
	var out agent.Status
	err := c.do(ctx, http.MethodPost, "/api/agent/stop", nil, &out)
	return out, err
}

// Run asks for a manual cycle. The gateway runs it in the background.
func (c *Client) Run(ctx context.Context, opts agent.RunOptions) error {
	return c.do(ctx, http.MethodPost, "/api/agent/run", runRequest{Topic: opts.Topic, WordCount: opts.WordCount}, nil)
}

// Activity fetches up to limit recent lines, newest first. Zero means all.
func (c *Client) Activity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	path := "/api/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []ActivityEntry
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Follow streams new activity lines to fn until ctx is done or the server
// closes the stream.
func (c *Client) Follow(ctx context.Context, fn func(ActivityEntry)) error {
	u, err := url.Parse(c.baseURL + "/ws/activity")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPHeader: c.header()})
	if err != nil {
		return fmt.Errorf("gateway: dial activity stream: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()

	for {
		var e ActivityEntry
		if err := wsjson.Read(ctx, conn, &e); err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return err
		}
		fn(e)
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	switch {
	case c.auth.BearerToken != "":
		h.Set("Authorization", "Bearer "+c.auth.BearerToken)
	case c.auth.BasicUser != "" && c.auth.BasicPass != "":
		req := &http.Request{Header: h}
		req.SetBasicAuth(c.auth.BasicUser, c.auth.BasicPass)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header = c.header()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxClientResponse))
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
