package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/flemzord/blogclaw/internal/provider"
	"github.com/flemzord/blogclaw/internal/provider/providertest"
)

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	mock := providertest.Reply("```json\n{\"title\": \"Ten Tips\", \"content\": \"<h2>One</h2>\"}\n```")
	g := New(mock, 4096, nil)

	post, err := g.Generate(context.Background(), Request{Topic: "Travel", WordCount: 800})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Title != "Ten Tips" || post.Content != "<h2>One</h2>" {
		t.Errorf("post = %+v", post)
	}

	calls, req := mock.Calls()
	if calls != 1 {
		t.Fatalf("Complete calls = %d, want 1", calls)
	}
	if !req.JSONMode {
		t.Error("expected JSON mode")
	}
	if req.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != provider.MessageRoleSystem {
		t.Fatalf("messages = %+v, want system + user", req.Messages)
	}
	user := req.Messages[1].Content
	for _, want := range []string{"**Topic/Niche:** Travel", "800 words", "**Tone:** Professional"} {
		if !strings.Contains(user, want) {
			t.Errorf("prompt missing %q:\n%s", want, user)
		}
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	t.Parallel()

	g := New(providertest.Fail(provider.ErrRateLimit), 0, nil)

	_, err := g.Generate(context.Background(), Request{Topic: "Tech", WordCount: 500})
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if gerr.Model != "mock-model" {
		t.Errorf("Model = %q, want mock-model", gerr.Model)
	}
	if !errors.Is(err, provider.ErrRateLimit) {
		t.Errorf("error should wrap ErrRateLimit: %v", err)
	}
}

func TestGenerate_ParseError(t *testing.T) {
	t.Parallel()

	g := New(providertest.Reply("As an AI I would rather not."), 0, nil)

	_, err := g.Generate(context.Background(), Request{Topic: "Tech", WordCount: 500})
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want wrapped *ParseError", err)
	}
	if perr.Raw != "As an AI I would rather not." {
		t.Errorf("Raw = %q", perr.Raw)
	}
	if err.Error() != "Failed to parse JSON response" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	got := BuildPrompt(Request{
		Topic:        "  Quantum Computing ",
		WordCount:    1200,
		Tone:         "Casual",
		Instructions: "Mention qubits.",
	})
	for _, want := range []string{
		"**Topic/Niche:** Quantum Computing\n",
		"**Approximate Word Count:** 1200 words",
		"**Tone:** Casual",
		"**Additional Instructions:** Mention qubits.",
		"NO <html>, <head>, or <body> tags",
		`"title": "Your Web-Optimized Title Here"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
