// Package schedulertest provides test doubles for the scheduler package.
package schedulertest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/blogclaw/internal/scheduler"
)

// MockAction records invocations of a scheduler.Action. Each call is also
// sent on Calls, which is buffered generously so the scheduler never blocks
// on an inattentive test.
type MockAction struct {
	RunFunc func(ctx context.Context)

	Calls chan struct{}

	mu    sync.Mutex
	count int
}

// NewMockAction returns a MockAction with a buffered Calls channel.
func NewMockAction() *MockAction {
	return &MockAction{Calls: make(chan struct{}, 64)}
}

// Action returns the function to hand to Scheduler.Start.
func (m *MockAction) Action() scheduler.Action {
	return func(ctx context.Context) {
		m.mu.Lock()
		m.count++
		m.mu.Unlock()

		select {
		case m.Calls <- struct{}{}:
		default:
		}

		if m.RunFunc != nil {
			m.RunFunc(ctx)
		}
	}
}

// CallCount returns the number of invocations so far.
func (m *MockAction) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// WaitCall blocks until the next invocation or timeout, reporting whether
// one arrived.
func (m *MockAction) WaitCall(timeout time.Duration) bool {
	select {
	case <-m.Calls:
		return true
	case <-time.After(timeout):
		return false
	}
}
