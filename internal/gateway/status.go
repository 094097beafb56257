package gateway

import (
	"net/http"
	"time"

	"github.com/flemzord/blogclaw/internal/agent"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	agent.Status
	UptimeSeconds int64    `json:"uptime_seconds"`
	Missing       []string `json:"missing_settings,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Status:        g.deps.Agent.Status(),
			UptimeSeconds: int64(time.Since(g.startedAt) / time.Second),
		}
		if g.deps.Settings != nil {
			resp.Missing = g.deps.Settings.Missing()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
