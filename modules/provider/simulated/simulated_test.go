package simulated

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/blogclaw/internal/provider"
)

func TestComplete_UsesPromptTopic(t *testing.T) {
	t.Parallel()

	p := New(0)
	resp, err := p.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleUser, Content: "Configuration:\n- **Topic/Niche:** Travel\n- **Tone:** Casual"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var post map[string]string
	if err := json.Unmarshal([]byte(resp.Content), &post); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if post["title"] != "Simulated Blog Post: Travel" {
		t.Errorf("title = %q", post["title"])
	}
	if !strings.Contains(post["content"], "<h2>Introduction to Travel</h2>") {
		t.Errorf("content = %q", post["content"])
	}
}

func TestComplete_RespectsContext(t *testing.T) {
	t.Parallel()

	p := New(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Complete(ctx, provider.CompletionRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestRegistered_KeyOptional(t *testing.T) {
	t.Parallel()

	info, ok := provider.Lookup("Simulated")
	if !ok {
		t.Fatal("simulated backend not registered")
	}
	if !info.KeyOptional {
		t.Error("simulated backend should not require an API key")
	}
	p, err := provider.New("simulated", provider.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelName() != "simulated" {
		t.Errorf("ModelName() = %q", p.ModelName())
	}
}
