package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flemzord/blogclaw/internal/scheduler"
	"github.com/flemzord/blogclaw/internal/scheduler/schedulertest"
	"github.com/jonboulle/clockwork"
)

var epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, stopTimeout time.Duration) (*scheduler.Scheduler, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	s := scheduler.New(scheduler.Config{Clock: clock, StopTimeout: stopTimeout})
	t.Cleanup(s.Stop)
	return s, clock
}

// waitTimer blocks until the scheduler goroutine has armed its timer.
func waitTimer(t *testing.T, clock *clockwork.FakeClock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("timer was never armed: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStart_InvalidInterval(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, 0)
	for _, hours := range []int{0, -3, scheduler.MaxIntervalHours + 1, 3_000_000} {
		err := s.Start(context.Background(), hours, func(context.Context) {})
		if !errors.Is(err, scheduler.ErrInvalidInterval) {
			t.Errorf("Start(%d) error = %v, want ErrInvalidInterval", hours, err)
		}
	}
	if s.Status().Running {
		t.Error("scheduler should not be running after a rejected Start")
	}
}

func TestStart_MaxInterval(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	fired := make(chan struct{}, 1)
	if err := s.Start(context.Background(), scheduler.MaxIntervalHours, func(context.Context) { fired <- struct{}{} }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)

	st := s.Status()
	if st.Interval != scheduler.MaxIntervalHours*time.Hour {
		t.Errorf("Interval = %v, want %v", st.Interval, scheduler.MaxIntervalHours*time.Hour)
	}
	if got := st.NextRunAt.Sub(epoch); got != st.Interval {
		t.Errorf("NextRunAt - start = %v, want %v", got, st.Interval)
	}

	clock.Advance(time.Hour)
	select {
	case <-fired:
		t.Fatal("action fired long before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNew_InitialState(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, 0)
	st := s.Status()
	if st.Running {
		t.Error("new scheduler should be stopped")
	}
	if !st.NextRunAt.IsZero() || !st.LastRunAt.IsZero() {
		t.Errorf("expected zero times, got next=%v last=%v", st.NextRunAt, st.LastRunAt)
	}
	if st.LastStatus != scheduler.NotStartedStatus {
		t.Errorf("LastStatus = %q, want %q", st.LastStatus, scheduler.NotStartedStatus)
	}
}

func TestStart_FiresOncePerInterval(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	action := schedulertest.NewMockAction()

	if err := s.Start(context.Background(), 24, action.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.Status()
	if !st.Running {
		t.Fatal("expected running")
	}
	if want := epoch.Add(24 * time.Hour); !st.NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", st.NextRunAt, want)
	}
	if st.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", st.Interval)
	}

	waitTimer(t, clock)
	clock.Advance(23 * time.Hour)
	if action.WaitCall(50 * time.Millisecond) {
		t.Fatal("action fired before the interval elapsed")
	}

	clock.Advance(time.Hour)
	if !action.WaitCall(2 * time.Second) {
		t.Fatal("action did not fire after one interval")
	}

	waitTimer(t, clock)
	if want := epoch.Add(48 * time.Hour); !s.Status().NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", s.Status().NextRunAt, want)
	}

	clock.Advance(24 * time.Hour)
	if !action.WaitCall(2 * time.Second) {
		t.Fatal("action did not fire after the second interval")
	}
	if got := action.CallCount(); got != 2 {
		t.Errorf("CallCount() = %d, want 2", got)
	}
}

func TestStart_WhileRunningIsNoop(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	first := schedulertest.NewMockAction()
	second := schedulertest.NewMockAction()

	if err := s.Start(context.Background(), 3, first.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)
	if err := s.Start(context.Background(), 6, second.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Status().Interval; got != 3*time.Hour {
		t.Errorf("Interval = %v, want 3h (second Start must be ignored)", got)
	}

	clock.Advance(3 * time.Hour)
	if !first.WaitCall(2 * time.Second) {
		t.Fatal("first action did not fire")
	}
	if second.CallCount() != 0 {
		t.Error("second action must never run")
	}
}

func TestStop_WithoutStart(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, 0)
	s.Stop()
	s.Stop()
	if s.Status().Running {
		t.Error("expected stopped")
	}
}

func TestStop_CancelsPendingRun(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	action := schedulertest.NewMockAction()

	if err := s.Start(context.Background(), 24, action.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)

	s.Stop()
	st := s.Status()
	if st.Running {
		t.Error("expected stopped")
	}
	if !st.NextRunAt.IsZero() {
		t.Errorf("NextRunAt = %v, want zero after Stop", st.NextRunAt)
	}

	clock.Advance(72 * time.Hour)
	if action.WaitCall(50 * time.Millisecond) {
		t.Fatal("action fired after Stop")
	}

	// Stop then Start again works and re-anchors on the current time.
	if err := s.Start(context.Background(), 1, action.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := epoch.Add(73 * time.Hour); !s.Status().NextRunAt.Equal(want) {
		t.Errorf("NextRunAt = %v, want %v", s.Status().NextRunAt, want)
	}
}

func TestRecordOutcome(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	clock.Advance(90 * time.Minute)

	s.RecordOutcome("Success! Post ID: 42 (Status: draft)")

	st := s.Status()
	if !st.LastRunAt.Equal(epoch.Add(90 * time.Minute)) {
		t.Errorf("LastRunAt = %v, want %v", st.LastRunAt, epoch.Add(90*time.Minute))
	}
	if st.LastStatus != "Success! Post ID: 42 (Status: draft)" {
		t.Errorf("LastStatus = %q", st.LastStatus)
	}

	clock.Advance(time.Minute)
	s.RecordOutcome("LLM Error: boom")
	if got := s.Status().LastRunAt; !got.After(st.LastRunAt) {
		t.Errorf("LastRunAt did not advance: %v", got)
	}
}

func TestActionPanic_IsRecovered(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	action := schedulertest.NewMockAction()
	action.RunFunc = func(context.Context) { panic("kaboom") }

	if err := s.Start(context.Background(), 1, action.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)
	clock.Advance(time.Hour)

	waitFor(t, func() bool { return s.Status().LastStatus == "Critical Error: kaboom" })

	// The loop survives and arms the next run.
	waitTimer(t, clock)
	if !s.Status().Running {
		t.Error("scheduler should keep running after a panicking action")
	}
}

func TestStop_DoesNotInterruptInflightAction(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 20*time.Millisecond)
	release := make(chan struct{})
	finished := make(chan error, 1)

	action := schedulertest.NewMockAction()
	action.RunFunc = func(ctx context.Context) {
		<-release
		finished <- ctx.Err()
	}

	if err := s.Start(context.Background(), 1, action.Action()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)
	clock.Advance(time.Hour)
	if !action.WaitCall(2 * time.Second) {
		t.Fatal("action did not start")
	}

	s.Stop() // returns after the bounded wait
	if s.Status().Running {
		t.Error("expected stopped")
	}

	if err := s.Start(context.Background(), 1, action.Action()); !errors.Is(err, scheduler.ErrStopping) {
		t.Fatalf("Start() error = %v, want ErrStopping", err)
	}

	close(release)
	select {
	case err := <-finished:
		if err != nil {
			t.Errorf("action context was cancelled by Stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("action never finished")
	}

	waitFor(t, func() bool {
		return s.Start(context.Background(), 1, action.Action()) == nil
	})
	if !s.Status().Running {
		t.Error("expected running after restart")
	}
}

func TestStart_ContextCancelStops(t *testing.T) {
	t.Parallel()

	s, clock := newTestScheduler(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	if err := s.Start(ctx, 2, func(context.Context) {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitTimer(t, clock)
	cancel()

	waitFor(t, func() bool { return !s.Status().Running })
}

func TestFormatTime(t *testing.T) {
	t.Parallel()

	if got := scheduler.FormatTime(time.Time{}); got != "N/A" {
		t.Errorf("FormatTime(zero) = %q, want N/A", got)
	}
	ts := time.Date(2025, time.June, 2, 14, 5, 9, 0, time.Local)
	if got := scheduler.FormatTime(ts); got != "2025-06-02 14:05:09" {
		t.Errorf("FormatTime() = %q", got)
	}
}
