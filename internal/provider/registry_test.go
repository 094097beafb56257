package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type stubProvider struct {
	opts Options
}

func (s *stubProvider) Complete(context.Context, CompletionRequest) (CompletionResponse, error) {
	return CompletionResponse{Content: "stub"}, nil
}

func (s *stubProvider) ModelName() string { return s.opts.Model }

func registerStub(t *testing.T, display string, aliases ...string) Kind {
	t.Helper()
	kind := Kind(strings.ToLower(strings.ReplaceAll(t.Name(), "/", ".")))
	Register(Info{
		Kind:         kind,
		DisplayName:  display,
		Aliases:      aliases,
		DefaultModel: "stub-1",
		New: func(opts Options) (Provider, error) {
			return &stubProvider{opts: opts}, nil
		},
	})
	return kind
}

func TestRegister_LookupByKindDisplayAndAlias(t *testing.T) {
	t.Parallel()

	display := t.Name() + " Display"
	alias := t.Name() + "-alias"
	kind := registerStub(t, display, alias)

	for _, name := range []string{string(kind), strings.ToUpper(string(kind)), display, "  " + alias + "  ", strings.ToUpper(alias)} {
		info, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if info.Kind != kind {
			t.Errorf("Lookup(%q).Kind = %q, want %q", name, info.Kind, kind)
		}
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	t.Parallel()

	kind := registerStub(t, "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register(Info{Kind: kind, New: func(Options) (Provider, error) { return nil, nil }})
}

func TestRegister_InvalidInfoPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info Info
	}{
		{name: "empty kind", info: Info{New: func(Options) (Provider, error) { return nil, nil }}},
		{name: "nil factory", info: Info{Kind: Kind(t.Name() + ".nil")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			Register(tt.info)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	kind := registerStub(t, "")

	p, err := New(string(kind), Options{Model: "custom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelName() != "custom" {
		t.Errorf("ModelName() = %q, want custom", p.ModelName())
	}
	if sp := p.(*stubProvider); sp.opts.Logger == nil {
		t.Error("expected a default logger to be injected")
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New("", Options{}); !errors.Is(err, ErrNoProvider) {
		t.Errorf("New(\"\") error = %v, want ErrNoProvider", err)
	}
	if _, err := New("definitely-not-registered", Options{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("New(unknown) error = %v, want ErrUnknownKind", err)
	}
}

func TestRegistered_Sorted(t *testing.T) {
	t.Parallel()

	registerStub(t, "")
	infos := Registered()
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Kind > infos[i].Kind {
			t.Fatalf("Registered() not sorted: %q before %q", infos[i-1].Kind, infos[i].Kind)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{ErrRateLimit, "rate_limit"},
		{fmt.Errorf("openai: %w", ErrAuth), "auth"},
		{fmt.Errorf("gemini: %w", ErrProviderDown), "unavailable"},
		{ErrUnknownKind, "config"},
		{ErrNoProvider, "config"},
		{errors.New("weird"), "other"},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrRateLimit, ErrProviderDown, ErrAuth, ErrNoProvider, ErrUnknownKind}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Fatalf("sentinel errors must be distinct: %v and %v", a, b)
			}
		}
	}
}
