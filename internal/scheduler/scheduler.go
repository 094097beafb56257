// Package scheduler runs a single action on a fixed hourly interval.
//
// The interval is measured from Start, not aligned to the wall clock, and the
// next run is computed after each run completes, so a slow action pushes the
// following run back instead of stacking. Missed runs are never caught up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// MaxIntervalHours is the longest accepted interval, one year.
const MaxIntervalHours = 366 * 24

// NotStartedStatus is the LastStatus of a scheduler that has never recorded
// an outcome.
const NotStartedStatus = "Not started"

// DefaultStopTimeout bounds how long Stop waits for the timer goroutine.
const DefaultStopTimeout = time.Second

var (
	// ErrInvalidInterval is returned by Start for a non-positive interval.
	ErrInvalidInterval = errors.New("scheduler: interval must be between 1 and 8784 hours")

	// ErrStopping is returned by Start while the goroutine of a previous
	// Start is still finishing an action.
	ErrStopping = errors.New("scheduler: previous run is still stopping")
)

// Action is the job run on every tick. It receives the context given to
// Start; Stop does not cancel it.
type Action func(ctx context.Context)

// State is a point-in-time snapshot of the scheduler.
type State struct {
	Running    bool
	Interval   time.Duration
	NextRunAt  time.Time // zero when stopped
	LastRunAt  time.Time // zero until the first RecordOutcome
	LastStatus string
}

// Config configures a Scheduler. Zero values select defaults.
type Config struct {
	Clock       clockwork.Clock
	Logger      *slog.Logger
	StopTimeout time.Duration
}

// Scheduler owns at most one timer goroutine. All methods are safe for
// concurrent use.
type Scheduler struct {
	clock       clockwork.Clock
	logger      *slog.Logger
	stopTimeout time.Duration

	mu       sync.Mutex
	running  bool
	interval time.Duration
	next     time.Time
	last     time.Time
	status   string
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a stopped scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	return &Scheduler{
		clock:       cfg.Clock,
		logger:      cfg.Logger.With("component", "scheduler"),
		stopTimeout: cfg.StopTimeout,
		status:      NotStartedStatus,
	}
}

// Start runs action every intervalHours hours, the first run one interval
// from now. Calling Start on a running scheduler is a no-op. Cancelling ctx
// stops the scheduler as if Stop had been called.
func (s *Scheduler) Start(ctx context.Context, intervalHours int, action Action) error {
	if intervalHours <= 0 || intervalHours > MaxIntervalHours {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, intervalHours)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.done != nil {
		select {
		case <-s.done:
			s.done = nil
		default:
			return ErrStopping
		}
	}

	interval := time.Duration(intervalHours) * time.Hour
	schedule := cron.Every(interval)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.running = true
	s.interval = interval
	s.next = schedule.Next(s.clock.Now())
	s.cancel = cancel
	s.done = done

	go s.loop(loopCtx, ctx, schedule, action, done)

	s.logger.Info("scheduler started", "interval", interval, "next_run", s.next)
	return nil
}

// Stop cancels the pending timer and waits up to the stop timeout for the
// timer goroutine to exit. An action already running is left to finish.
// Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.next = time.Time{}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	// Bounded in real time: it limits how long the caller blocks, it is not
	// schedule arithmetic.
	wait := time.NewTimer(s.stopTimeout)
	defer wait.Stop()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-wait.C:
		s.logger.Warn("scheduler stop timed out; action still running", "timeout", s.stopTimeout)
	}
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Running:    s.running,
		Interval:   s.interval,
		NextRunAt:  s.next,
		LastRunAt:  s.last,
		LastStatus: s.status,
	}
}

// RecordOutcome stamps the current time as the last run and stores status.
func (s *Scheduler) RecordOutcome(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = s.clock.Now()
	s.status = status
}

func (s *Scheduler) loop(loopCtx, runCtx context.Context, schedule cron.Schedule, action Action, done chan struct{}) {
	defer close(done)
	defer s.exited(done)

	for {
		s.mu.Lock()
		next := s.next
		s.mu.Unlock()

		timer := s.clock.NewTimer(next.Sub(s.clock.Now()))
		select {
		case <-loopCtx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}

		// Stop may have won the race against the timer.
		if loopCtx.Err() != nil {
			return
		}

		s.fire(runCtx, action)

		s.mu.Lock()
		if s.done != done || !s.running {
			s.mu.Unlock()
			return
		}
		s.next = schedule.Next(s.clock.Now())
		next = s.next
		s.mu.Unlock()

		s.logger.Debug("next run scheduled", "next_run", next)
	}
}

// exited clears the running flag when the loop ends on its own, which only
// happens when the Start context is cancelled.
func (s *Scheduler) exited(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done && s.running {
		s.running = false
		s.next = time.Time{}
		s.cancel()
		s.logger.Info("scheduler stopped: context done")
	}
}

func (s *Scheduler) fire(ctx context.Context, action Action) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled action panicked", "panic", r)
			s.RecordOutcome(fmt.Sprintf("Critical Error: %v", r))
		}
	}()
	action(ctx)
}

// FormatTime renders t the way status displays show schedule times, or
// "N/A" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format(time.DateTime)
}
