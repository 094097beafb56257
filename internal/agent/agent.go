package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/flemzord/blogclaw/internal/activity"
	"github.com/flemzord/blogclaw/internal/config"
	"github.com/flemzord/blogclaw/internal/scheduler"
	"github.com/flemzord/blogclaw/internal/settings"
	"github.com/flemzord/blogclaw/internal/telemetry"
)

// FallbackTopic is used when neither the caller, the settings file nor the
// defaults name a topic.
const FallbackTopic = "Tech"

var (
	// ErrMissingCredentials is returned by Start and RunOnce while any
	// required setting is empty.
	ErrMissingCredentials = errors.New("agent: missing credentials")

	// ErrInvalidWordCount is returned for a word count override outside
	// the accepted range.
	ErrInvalidWordCount = fmt.Errorf("agent: word count must be between %d and %d", config.MinWordCount, config.MaxWordCount)
)

// Config wires an Agent. Runner, Scheduler and Settings are required.
type Config struct {
	Runner    *Runner
	Scheduler *scheduler.Scheduler
	Settings  *settings.Store
	Activity  *activity.Log
	Metrics   *telemetry.Metrics

	// Defaults fill the fields a caller leaves empty.
	Defaults      Cycle
	IntervalHours int

	Logger *slog.Logger
}

// StartOptions overrides the configured schedule. Zero fields keep the
// defaults.
type StartOptions struct {
	IntervalHours int
	Topic         string
	WordCount     int
}

// RunOptions overrides the configured cycle for a manual run.
type RunOptions struct {
	Topic     string
	WordCount int
}

// Status is the agent's state as shown by the control surfaces.
type Status struct {
	Running       bool   `json:"running"`
	Busy          bool   `json:"busy"`
	IntervalHours int    `json:"interval_hours,omitempty"`
	NextRun       string `json:"next_run"`
	LastRun       string `json:"last_run"`
	LastStatus    string `json:"last_status"`
	Model         string `json:"model,omitempty"`
}

// Agent ties the scheduler to the runner.
type Agent struct {
	runner   *Runner
	sched    *scheduler.Scheduler
	store    *settings.Store
	activity *activity.Log
	metrics  *telemetry.Metrics
	defaults Cycle
	interval int
	logger   *slog.Logger

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
}

// New creates an Agent.
func New(cfg Config) *Agent {
	if cfg.Activity == nil {
		cfg.Activity = cfg.Runner.activity
	}
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = 24
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Agent{
		runner:   cfg.Runner,
		sched:    cfg.Scheduler,
		store:    cfg.Settings,
		activity: cfg.Activity,
		metrics:  cfg.Metrics,
		defaults: cfg.Defaults,
		interval: cfg.IntervalHours,
		logger:   cfg.Logger.With("component", "agent"),
	}
}

// Start begins the schedule. The schedule outlives ctx; only Stop ends it.
// The chosen topic is remembered in the settings file. Starting a running
// agent is a no-op.
func (a *Agent) Start(ctx context.Context, opts StartOptions) error {
	if err := a.CheckCredentials(); err != nil {
		return err
	}
	c, err := a.cycle(opts.Topic, opts.WordCount)
	if err != nil {
		return err
	}

	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.sched.Status().Running {
		return nil
	}

	interval := opts.IntervalHours
	if interval <= 0 {
		interval = a.interval
	}
	if interval > scheduler.MaxIntervalHours {
		return fmt.Errorf("%w: got %d", scheduler.ErrInvalidInterval, interval)
	}
	a.rememberTopic(c.Topic)

	err = a.sched.Start(context.WithoutCancel(ctx), interval, func(ctx context.Context) {
		a.activity.Add("Starting scheduled job for topic: " + c.Topic)
		if _, err := a.runner.RunCycle(ctx, c); err != nil {
			a.activity.Add("Skipped scheduled job: " + err.Error())
		}
	})
	if err != nil {
		return err
	}

	if a.metrics != nil {
		a.metrics.SetRunning(true)
	}
	a.activity.Add(fmt.Sprintf("Agent started. Running every %d hours.", interval))
	a.logger.Info("agent started", "interval_hours", interval, "topic", c.Topic)
	return nil
}

// Stop ends the schedule. A cycle already running is left to finish.
func (a *Agent) Stop() {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.sched.Stop()
	if a.metrics != nil {
		a.metrics.SetRunning(false)
	}
	a.activity.Add("Agent stopped.")
	a.logger.Info("agent stopped")
}

// RunOnce runs a single cycle now, outside the schedule.
func (a *Agent) RunOnce(ctx context.Context, opts RunOptions) (Outcome, error) {
	if err := a.CheckCredentials(); err != nil {
		return Outcome{}, err
	}
	c, err := a.cycle(opts.Topic, opts.WordCount)
	if err != nil {
		return Outcome{}, err
	}
	a.activity.Add("Starting manual run...")
	return a.runner.RunCycle(ctx, c)
}

// State returns the raw scheduler state.
func (a *Agent) State() scheduler.State {
	return a.sched.Status()
}

// Status returns the display view of the agent.
func (a *Agent) Status() Status {
	st := a.sched.Status()
	return Status{
		Running:       st.Running,
		Busy:          a.runner.Busy(),
		IntervalHours: int(st.Interval / time.Hour),
		NextRun:       scheduler.FormatTime(st.NextRunAt),
		LastRun:       scheduler.FormatTime(st.LastRunAt),
		LastStatus:    st.LastStatus,
		Model:         a.runner.Model(),
	}
}

// Activity returns the activity log.
func (a *Agent) Activity() *activity.Log { return a.activity }

// Runner returns the cycle runner.
func (a *Agent) Runner() *Runner { return a.runner }

// CheckCredentials returns ErrMissingCredentials, naming the empty keys, while
// the settings are incomplete.
func (a *Agent) CheckCredentials() error {
	missing := a.store.Missing()
	if len(missing) == 0 {
		return nil
	}
	a.logger.Warn("credentials missing", "keys", missing)
	return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
}

// ValidateWordCount checks a word count override. Zero keeps the default.
func ValidateWordCount(n int) error {
	if n == 0 || (n >= config.MinWordCount && n <= config.MaxWordCount) {
		return nil
	}
	return fmt.Errorf("%w, got %d", ErrInvalidWordCount, n)
}

// cycle resolves a Cycle from the overrides, the settings and the defaults.
func (a *Agent) cycle(topic string, wordCount int) (Cycle, error) {
	if err := ValidateWordCount(wordCount); err != nil {
		return Cycle{}, err
	}

	c := a.defaults
	c.Categories = append([]int(nil), a.defaults.Categories...)
	c.Tags = append([]int(nil), a.defaults.Tags...)

	switch {
	case strings.TrimSpace(topic) != "":
		c.Topic = strings.TrimSpace(topic)
	case a.store.Get(settings.KeyTopic) != "":
		c.Topic = a.store.Get(settings.KeyTopic)
	case c.Topic == "":
		c.Topic = FallbackTopic
	}
	if wordCount > 0 {
		c.WordCount = wordCount
	}
	return c, nil
}

func (a *Agent) rememberTopic(topic string) {
	if a.store.Get(settings.KeyTopic) == topic {
		return
	}
	a.store.Set(settings.KeyTopic, topic)
	if err := a.store.Save(); err != nil {
		a.logger.Warn("could not save topic", "error", err)
	}
}
