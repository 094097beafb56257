// Package app assembles blogclaw from its configuration and runs it.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flemzord/blogclaw/internal/activity"
	"github.com/flemzord/blogclaw/internal/agent"
	"github.com/flemzord/blogclaw/internal/config"
	"github.com/flemzord/blogclaw/internal/scheduler"
	"github.com/flemzord/blogclaw/internal/security"
	"github.com/flemzord/blogclaw/internal/settings"
	"github.com/flemzord/blogclaw/internal/telemetry"
)

// Params configures Build.
type Params struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is tried and defaults apply when nothing
	// is found.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// Stderr receives logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// App holds every long-lived component of a running agent.
type App struct {
	Config     *config.Config
	ConfigPath string
	Version    string

	Logger    *slog.Logger
	Redactor  *security.Redactor
	Settings  *settings.Store
	Activity  *activity.Log
	Metrics   *telemetry.Metrics
	Tracing   *telemetry.Tracing
	Scheduler *scheduler.Scheduler
	Runner    *agent.Runner
	Agent     *agent.Agent
}

// Build loads and validates the configuration and wires the components.
// Incomplete settings are not an error: the agent starts unconfigured and
// refuses to run until they are filled in.
func Build(ctx context.Context, p Params) (*App, error) {
	cfgPath, err := resolveOptionalConfig(p.ConfigPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if p.LogLevel != "" {
		levelName = p.LogLevel
	}
	level, err := security.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	redactor := security.NewRedactor()
	logger := security.NewLogger(stderr, level, redactor)

	store, err := settings.Open(config.ResolveSettingsPath(cfg, cfgPath))
	if err != nil {
		logger.Warn("settings file unreadable, starting empty", "path", store.Path(), "error", err)
	}

	tracing, err := telemetry.NewTracing(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	metrics := telemetry.NewMetrics()
	log := activity.New(cfg.Activity.Capacity, nil)
	sched := scheduler.New(scheduler.Config{
		Logger:      logger,
		StopTimeout: cfg.Schedule.StopTimeout,
	})
	runner := agent.NewRunner(agent.RunnerConfig{
		Activity: log,
		Recorder: sched,
		Metrics:  metrics,
		Tracer:   tracing.Tracer(),
		Logger:   logger,
	})

	s := cfg.Schedule
	a := &App{
		Config:     cfg,
		ConfigPath: cfgPath,
		Version:    p.Version,
		Logger:     logger,
		Redactor:   redactor,
		Settings:   store,
		Activity:   log,
		Metrics:    metrics,
		Tracing:    tracing,
		Scheduler:  sched,
		Runner:     runner,
		Agent: agent.New(agent.Config{
			Runner:    runner,
			Scheduler: sched,
			Settings:  store,
			Activity:  log,
			Metrics:   metrics,
			Defaults: agent.Cycle{
				Topic:        s.Topic,
				WordCount:    s.WordCount,
				Tone:         s.Tone,
				Instructions: s.Instructions,
				PostStatus:   s.PostStatus,
				Categories:   s.Categories,
				Tags:         s.Tags,
			},
			IntervalHours: s.IntervalHours,
			Logger:        logger,
		}),
	}

	if err := a.Rewire(); err != nil {
		logger.Warn("agent not ready", "error", err, "missing", store.Missing())
	}
	return a, nil
}

// Rewire rebuilds the generator and publisher from the current settings
// and refreshes the log redactor. On failure the runner is left without
// collaborators.
func (a *App) Rewire() error {
	creds := a.Settings.Credentials()
	a.Redactor.SetLiterals(creds.Secrets()...)

	gen, pub, err := buildCollaborators(a.Config, creds, a.Logger)
	if err != nil {
		a.Runner.SetCollaborators(nil, nil)
		return err
	}
	a.Runner.SetCollaborators(gen, pub)
	a.Logger.Info("collaborators ready", "model", gen.Model(), "site", creds.SiteURL)
	return nil
}

// ReloadSettings rereads the settings file and rewires.
func (a *App) ReloadSettings() error {
	if err := a.Settings.Reload(); err != nil {
		a.Logger.Warn("settings reload", "error", err)
	}
	if err := a.Rewire(); err != nil {
		return fmt.Errorf("rewire: %w", err)
	}
	return nil
}

// Close stops the schedule and flushes traces.
func (a *App) Close(ctx context.Context) {
	if a.Agent.Status().Running {
		a.Agent.Stop()
	}
	if err := a.Tracing.Shutdown(ctx); err != nil {
		a.Logger.Warn("tracing shutdown", "error", err)
	}
}
