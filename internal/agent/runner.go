// Package agent runs the generate-then-publish cycle and exposes the
// start/stop/run-once controls every front end drives.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/blogclaw/internal/activity"
	"github.com/flemzord/blogclaw/internal/generator"
	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/publisher"
	"github.com/flemzord/blogclaw/internal/telemetry"
)

var (
	// ErrBusy is returned by RunCycle while another cycle is in progress.
	ErrBusy = errors.New("agent: a run is already in progress")

	// ErrNotConfigured is reported when no generator or publisher is set.
	ErrNotConfigured = errors.New("agent: generator and publisher are not configured")
)

// Generator writes a post for a request.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Post, error)
	Model() string
}

// Recorder receives the status line of every finished cycle.
type Recorder interface {
	RecordOutcome(status string)
}

// Cycle is the input of one generate-then-publish run.
type Cycle struct {
	Topic        string
	WordCount    int
	Tone         string
	Instructions string
	PostStatus   string
	Categories   []int
	Tags         []int
}

// Outcome describes a finished cycle. Err is the generation or publish
// failure, if any; it is already reflected in Status.
type Outcome struct {
	RunID  string
	Status string
	Title  string
	PostID int64
	Link   string
	Err    error
}

// RunnerConfig wires a Runner. Only Activity is required.
type RunnerConfig struct {
	Activity *activity.Log
	Recorder Recorder
	Metrics  *telemetry.Metrics
	Tracer   trace.Tracer
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Runner performs cycles one at a time. Collaborators can be swapped while
// it is idle or running; a cycle keeps the pair it started with.
type Runner struct {
	activity *activity.Log
	recorder Recorder
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	clock    clockwork.Clock
	logger   *slog.Logger

	mu  sync.RWMutex
	gen Generator
	pub publisher.Publisher

	run  sync.Mutex
	busy atomic.Bool
}

// NewRunner creates a Runner with no collaborators.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Activity == nil {
		cfg.Activity = activity.New(0, cfg.Clock)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		activity: cfg.Activity,
		recorder: cfg.Recorder,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With("component", "runner"),
	}
}

// SetCollaborators replaces the generator and publisher.
func (r *Runner) SetCollaborators(gen Generator, pub publisher.Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen = gen
	r.pub = pub
}

// Busy reports whether a cycle is in progress.
func (r *Runner) Busy() bool { return r.busy.Load() }

// Model returns the current generator's model name, or "" when unset.
func (r *Runner) Model() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gen == nil {
		return ""
	}
	return r.gen.Model()
}

// RunCycle generates one post and publishes it. Failures never escape as
// errors: they become the outcome status, an activity line and a recorded
// outcome. The only error returned is ErrBusy.
func (r *Runner) RunCycle(ctx context.Context, c Cycle) (Outcome, error) {
	if !r.run.TryLock() {
		r.logger.Warn("cycle skipped: a run is already in progress", "topic", c.Topic)
		r.observe(telemetry.OutcomeSkipped, 0)
		return Outcome{}, ErrBusy
	}
	defer r.run.Unlock()
	r.busy.Store(true)
	defer r.busy.Store(false)

	out := Outcome{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", out.RunID, "topic", c.Topic)
	start := r.clock.Now()

	ctx, span := r.tracer.Start(ctx, "blogclaw.cycle", trace.WithAttributes(
		attribute.String("run_id", out.RunID),
		attribute.String("topic", c.Topic),
		attribute.Int("word_count", c.WordCount),
	))
	defer span.End()

	outcome := r.cycle(ctx, c, &out, logger)

	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Status)
	}
	r.observe(outcome, r.clock.Since(start))
	if r.recorder != nil {
		r.recorder.RecordOutcome(out.Status)
	}
	return out, nil
}

// cycle fills out and returns the metrics outcome label.
func (r *Runner) cycle(ctx context.Context, c Cycle, out *Outcome, logger *slog.Logger) (outcome string) {
	defer func() {
		if v := recover(); v != nil {
			out.Err = fmt.Errorf("panic: %v", v)
			out.Status = fmt.Sprintf("Critical Error: %v", v)
			r.activity.Add(out.Status)
			logger.Error("cycle panicked", "panic", v)
			outcome = telemetry.OutcomeCritical
		}
	}()

	r.mu.RLock()
	gen, pub := r.gen, r.pub
	r.mu.RUnlock()

	if gen == nil || pub == nil {
		out.Err = ErrNotConfigured
		out.Status = "Critical Error: " + ErrNotConfigured.Error()
		r.activity.Add(out.Status)
		logger.Error("cycle aborted", "error", ErrNotConfigured)
		return telemetry.OutcomeCritical
	}

	r.activity.Add(fmt.Sprintf("Generating content for topic: %s...", c.Topic))
	post, err := r.generate(ctx, gen, c)
	if err != nil {
		out.Err = err
		out.Status = "LLM Error: " + err.Error()
		r.activity.Add(out.Status)
		logger.Error("generation failed", "model", gen.Model(), "error", err)
		if r.metrics != nil {
			r.metrics.GenerateError(provider.Classify(err))
		}
		return telemetry.OutcomeGenerateError
	}
	out.Title = post.Title
	r.activity.Add("Generated: " + post.Title)

	r.activity.Add("Publishing to WordPress...")
	res, err := r.publish(ctx, pub, c, post)
	if err != nil {
		out.Err = err
		out.Status = "WordPress Error: " + err.Error()
		r.activity.Add(out.Status)
		logger.Error("publish failed", "error", err)
		return telemetry.OutcomePublishError
	}

	out.PostID = res.ID
	out.Link = res.Link
	out.Status = fmt.Sprintf("Success! Post ID: %d (Status: %s)", res.ID, res.Status)
	r.activity.Add(out.Status)
	logger.Info("post published", "post_id", res.ID, "status", res.Status, "title", post.Title)
	return telemetry.OutcomeSuccess
}

func (r *Runner) generate(ctx context.Context, gen Generator, c Cycle) (generator.Post, error) {
	ctx, span := r.tracer.Start(ctx, "blogclaw.generate", trace.WithAttributes(
		attribute.String("model", gen.Model()),
	))
	defer span.End()

	post, err := gen.Generate(ctx, generator.Request{
		Topic:        c.Topic,
		WordCount:    c.WordCount,
		Tone:         c.Tone,
		Instructions: c.Instructions,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
	}
	return post, err
}

func (r *Runner) publish(ctx context.Context, pub publisher.Publisher, c Cycle, post generator.Post) (publisher.Result, error) {
	ctx, span := r.tracer.Start(ctx, "blogclaw.publish")
	defer span.End()

	res, err := pub.Publish(ctx, publisher.Draft{
		Title:      post.Title,
		Content:    post.Content,
		Status:     c.PostStatus,
		Categories: c.Categories,
		Tags:       c.Tags,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return res, err
	}
	span.SetAttributes(attribute.Int64("post_id", res.ID))
	return res, nil
}

func (r *Runner) observe(outcome string, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.ObserveCycle(outcome, elapsed, r.clock.Now())
}
