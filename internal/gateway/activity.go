package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/flemzord/blogclaw/internal/activity"
)

// pingInterval keeps idle activity streams alive through proxies.
const pingInterval = 30 * time.Second

// ActivityEntry is the JSON form of one activity line.
type ActivityEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Line    string    `json:"line"`
}

func toActivityEntry(e activity.Entry) ActivityEntry {
	return ActivityEntry{Time: e.Time, Message: e.Message, Line: e.String()}
}

// handleActivity returns GET /api/activity?limit=N, newest first.
func (g *Gateway) handleActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		entries := g.deps.Agent.Activity().Entries()
		if limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}
		out := make([]ActivityEntry, len(entries))
		for i, e := range entries {
			out[i] = toActivityEntry(e)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleActivityStream upgrades to a websocket and pushes every new
// activity line until the client goes away.
func (g *Gateway) handleActivityStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The server write timeout would otherwise cut long-lived streams.
		rc := http.NewResponseController(w)
		_ = rc.SetWriteDeadline(time.Time{})
		_ = rc.SetReadDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Debug("websocket accept failed", "error", err)
			return
		}
		defer func() { _ = conn.CloseNow() }()

		entries, cancel := g.deps.Agent.Activity().Subscribe()
		defer cancel()

		ctx := conn.CloseRead(r.Context())
		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					return
				}
			case e, ok := <-entries:
				if !ok {
					return
				}
				writeCtx, done := context.WithTimeout(ctx, 10*time.Second)
				err := wsjson.Write(writeCtx, conn, toActivityEntry(e))
				done()
				if err != nil {
					return
				}
			}
		}
	}
}
