// Package publisher defines the destination a generated post is sent to.
package publisher

import "context"

// StatusDraft is the post status used when a Draft leaves Status empty.
const StatusDraft = "draft"

// Draft is a post ready to be sent to the site.
type Draft struct {
	Title      string
	Content    string
	Status     string
	Categories []int
	Tags       []int
}

// Result identifies the post the site created.
type Result struct {
	ID     int64  `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Publisher creates posts on a remote site.
type Publisher interface {
	Publish(ctx context.Context, d Draft) (Result, error)
}

// Verifier is an optional interface for publishers that can check their
// credentials without creating anything.
type Verifier interface {
	Verify(ctx context.Context) error
}
