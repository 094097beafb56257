// Package generator turns a topic into a blog post by prompting a language
// model and normalising its reply into a title and an HTML body.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/flemzord/blogclaw/internal/provider"
)

// DefaultTone is used when a Request leaves Tone empty.
const DefaultTone = "Professional"

// Request describes the post to write.
type Request struct {
	Topic        string
	WordCount    int
	Tone         string
	Instructions string
}

// Post is a generated article. Content is an HTML fragment.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Generator prompts a provider and parses its reply. It holds no state
// between calls and is safe for concurrent use.
type Generator struct {
	provider  provider.Provider
	maxTokens int
	logger    *slog.Logger
}

// New creates a Generator on top of p. maxTokens caps the reply when
// positive; zero leaves the provider default.
func New(p provider.Provider, maxTokens int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider:  p,
		maxTokens: maxTokens,
		logger:    logger.With("component", "generator"),
	}
}

// Model returns the underlying model name.
func (g *Generator) Model() string {
	return g.provider.ModelName()
}

// Generate writes one post. Every failure is returned as a *Error.
func (g *Generator) Generate(ctx context.Context, req Request) (Post, error) {
	if req.Tone == "" {
		req.Tone = DefaultTone
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleSystem, Content: systemPrompt},
			{Role: provider.MessageRoleUser, Content: BuildPrompt(req)},
		},
		MaxTokens: g.maxTokens,
		JSONMode:  true,
	})
	if err != nil {
		return Post{}, &Error{Model: g.Model(), Err: err}
	}

	post, err := ParsePost(resp.Content)
	if err != nil {
		g.logger.Warn("unparseable model output",
			"model", g.Model(),
			"finish_reason", resp.FinishReason,
			"bytes", len(resp.Content),
		)
		return Post{}, &Error{Model: g.Model(), Err: err}
	}

	g.logger.Debug("post generated",
		"model", g.Model(),
		"topic", req.Topic,
		"title", post.Title,
		"tokens", resp.Usage.TotalTokens,
		"elapsed", time.Since(start),
	)
	return post, nil
}
