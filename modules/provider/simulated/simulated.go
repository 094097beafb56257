// Package simulated provides a backend that needs no API key and returns a
// canned post after a short delay. It exercises the whole pipeline against a
// real WordPress site without spending tokens.
package simulated

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/flemzord/blogclaw/internal/provider"
)

// DefaultDelay mimics the latency of a real generation.
const DefaultDelay = 2 * time.Second

// topicPattern pulls the topic back out of the generator's prompt.
var topicPattern = regexp.MustCompile(`(?m)Topic/Niche:\*{0,2}\s*(.+)$`)

func init() {
	provider.Register(provider.Info{
		Kind:         "simulated",
		DisplayName:  "Simulated",
		DefaultModel: "simulated",
		KeyOptional:  true,
		New: func(provider.Options) (provider.Provider, error) {
			return New(DefaultDelay), nil
		},
	})
}

var _ provider.Provider = (*Provider)(nil)

// Provider answers every request with a fixed post about the prompt's topic.
type Provider struct {
	delay time.Duration
}

// New returns a Provider that waits delay before answering.
func New(delay time.Duration) *Provider {
	return &Provider{delay: delay}
}

// Complete waits for the configured delay, then returns a JSON post.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return provider.CompletionResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	topic := "your topic"
	for _, m := range req.Messages {
		if match := topicPattern.FindStringSubmatch(m.Content); match != nil {
			topic = match[1]
			break
		}
	}

	body, err := json.Marshal(map[string]string{
		"title": "Simulated Blog Post: " + topic,
		"content": fmt.Sprintf("<h2>Introduction to %[1]s</h2><p>This is a simulated blog post generated without an API key. "+
			"In a real scenario, this would be comprehensive content about %[1]s.</p>"+
			"<h3>Key Concepts</h3><ul><li>Point 1</li><li>Point 2</li></ul><p>Conclusion: This is just a test.</p>", topic),
	})
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	return provider.CompletionResponse{Content: string(body), FinishReason: provider.FinishReasonStop}, nil
}

// ModelName implements provider.Provider.
func (p *Provider) ModelName() string { return "simulated" }
