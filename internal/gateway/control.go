package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/flemzord/blogclaw/internal/agent"
	"github.com/flemzord/blogclaw/internal/scheduler"
)

// maxBodySize caps control request bodies.
const maxBodySize = 64 * 1024

// startRequest is the optional body of POST /api/agent/start.
type startRequest struct {
	IntervalHours int    `json:"interval_hours"`
	Topic         string `json:"topic"`
	WordCount     int    `json:"word_count"`
}

// runRequest is the optional body of POST /api/agent/run.
type runRequest struct {
	Topic     string `json:"topic"`
	WordCount int    `json:"word_count"`
}

// decodeOptional decodes a JSON body into v. An empty body is not an error.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (g *Gateway) handleStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := decodeOptional(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.IntervalHours < 0 {
			writeError(w, http.StatusBadRequest, scheduler.ErrInvalidInterval.Error())
			return
		}

		err := g.deps.Agent.Start(g.baseCtx, agent.StartOptions{
			IntervalHours: req.IntervalHours,
			Topic:         req.Topic,
			WordCount:     req.WordCount,
		})
		switch {
		case errors.Is(err, agent.ErrMissingCredentials):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, scheduler.ErrStopping):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, scheduler.ErrInvalidInterval), errors.Is(err, agent.ErrInvalidWordCount):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeJSON(w, http.StatusOK, g.deps.Agent.Status())
		}
	}
}

func (g *Gateway) handleStop() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		g.deps.Agent.Stop()
		writeJSON(w, http.StatusOK, g.deps.Agent.Status())
	}
}

// handleRun starts a single cycle in the background and answers 202.
func (g *Gateway) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := decodeOptional(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := agent.ValidateWordCount(req.WordCount); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := g.deps.Agent.CheckCredentials(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if g.deps.Agent.Status().Busy {
			writeError(w, http.StatusConflict, agent.ErrBusy.Error())
			return
		}
		if !g.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		opts := agent.RunOptions{Topic: req.Topic, WordCount: req.WordCount}
		go func() {
			out, err := g.deps.Agent.RunOnce(g.baseCtx, opts)
			if err != nil {
				g.logger.Warn("manual run not started", "error", err)
				return
			}
			g.logger.Info("manual run finished", "run_id", out.RunID, "status", out.Status)
		}()

		writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
	}
}
