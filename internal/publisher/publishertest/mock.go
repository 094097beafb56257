// Package publishertest provides test helpers for the publisher package.
package publishertest

import (
	"context"
	"sync"

	"github.com/flemzord/blogclaw/internal/publisher"
)

// MockPublisher is a configurable test double for publisher.Publisher.
// A nil PublishFunc returns a draft result with ID 1.
type MockPublisher struct {
	PublishFunc func(ctx context.Context, d publisher.Draft) (publisher.Result, error)
	VerifyFunc  func(ctx context.Context) error

	mu     sync.Mutex
	drafts []publisher.Draft
}

// Succeed returns a MockPublisher that reports the post as created with id.
func Succeed(id int64) *MockPublisher {
	return &MockPublisher{
		PublishFunc: func(_ context.Context, d publisher.Draft) (publisher.Result, error) {
			return publisher.Result{ID: id, Status: d.Status}, nil
		},
	}
}

// Fail returns a MockPublisher whose Publish always returns err.
func Fail(err error) *MockPublisher {
	return &MockPublisher{
		PublishFunc: func(context.Context, publisher.Draft) (publisher.Result, error) {
			return publisher.Result{}, err
		},
	}
}

// Publish records d and delegates to PublishFunc. An empty status becomes
// draft, as on a real site.
func (m *MockPublisher) Publish(ctx context.Context, d publisher.Draft) (publisher.Result, error) {
	if d.Status == "" {
		d.Status = publisher.StatusDraft
	}
	m.mu.Lock()
	m.drafts = append(m.drafts, d)
	m.mu.Unlock()
	if m.PublishFunc == nil {
		return publisher.Result{ID: 1, Status: publisher.StatusDraft}, nil
	}
	return m.PublishFunc(ctx, d)
}

// Verify delegates to VerifyFunc; nil means the credentials are valid.
func (m *MockPublisher) Verify(ctx context.Context) error {
	if m.VerifyFunc == nil {
		return nil
	}
	return m.VerifyFunc(ctx)
}

// Drafts returns a copy of every draft passed to Publish.
func (m *MockPublisher) Drafts() []publisher.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publisher.Draft(nil), m.drafts...)
}

// Interface guards.
var (
	_ publisher.Publisher = (*MockPublisher)(nil)
	_ publisher.Verifier  = (*MockPublisher)(nil)
)
