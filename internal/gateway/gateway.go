// Package gateway serves the agent's HTTP control surface: health, status,
// start/stop/run, the activity log and Prometheus metrics. It binds to
// loopback unless auth is configured.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/flemzord/blogclaw/internal/activity"
	"github.com/flemzord/blogclaw/internal/agent"
	"github.com/flemzord/blogclaw/internal/security"
	"github.com/flemzord/blogclaw/internal/settings"
	"github.com/flemzord/blogclaw/internal/telemetry"
)

// Agent is the part of *agent.Agent the gateway drives.
type Agent interface {
	Start(ctx context.Context, opts agent.StartOptions) error
	Stop()
	RunOnce(ctx context.Context, opts agent.RunOptions) (agent.Outcome, error)
	CheckCredentials() error
	Status() agent.Status
	Activity() *activity.Log
}

// Deps are the collaborators the gateway serves. Agent is required.
type Deps struct {
	Agent    Agent
	Settings *settings.Store
	Redactor *security.Redactor
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
}

// Gateway is the HTTP server.
type Gateway struct {
	config    Config
	deps      Deps
	logger    *slog.Logger
	limiter   *rate.Limiter
	server    *http.Server
	baseCtx   context.Context
	startedAt time.Time
}

// New creates a gateway. cfg should come from ParseConfig.
func New(cfg Config, deps Deps) *Gateway {
	cfg.defaults()
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Redactor == nil {
		deps.Redactor = security.NewRedactor()
	}
	perRun := time.Minute / time.Duration(cfg.RunRatePerMinute)
	return &Gateway{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger.With("component", "gateway"),
		limiter:   rate.NewLimiter(rate.Every(perRun), 1),
		baseCtx:   context.Background(),
		startedAt: time.Now(),
	}
}

// Start listens on the configured address and serves in the background.
// Runs triggered over HTTP use ctx, not the request context.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.config.Validate(); err != nil {
		return err
	}
	g.baseCtx = ctx
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.Handler(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
