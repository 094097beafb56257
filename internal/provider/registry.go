package provider

import (
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

// Kind is the canonical identifier of a backend, e.g. "openai".
type Kind string

// Options carries everything a backend needs to build a Provider. Zero
// values select the backend's defaults.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Factory builds a Provider from Options.
type Factory func(opts Options) (Provider, error)

// Info describes a registered backend.
type Info struct {
	Kind Kind

	// DisplayName is what the configuration form shows and stores.
	DisplayName string

	// Aliases are additional names accepted by Lookup, matched
	// case-insensitively.
	Aliases []string

	DefaultModel string

	// KeyOptional is true for backends that work without an API key.
	KeyOptional bool

	New Factory
}

var (
	backends   = make(map[Kind]Info)
	backendsMu sync.RWMutex
)

// Register adds a backend. It panics on an empty kind, a nil factory or a
// duplicate registration. Intended to be called from init() functions.
func Register(info Info) {
	if info.Kind == "" {
		panic("provider kind must not be empty")
	}
	if info.New == nil {
		panic(fmt.Sprintf("provider %s: New function must not be nil", info.Kind))
	}

	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, exists := backends[info.Kind]; exists {
		panic(fmt.Sprintf("provider already registered: %s", info.Kind))
	}
	backends[info.Kind] = info
}

// Lookup resolves name, which may be a kind, a display name or an alias.
func Lookup(name string) (Info, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Info{}, false
	}

	backendsMu.RLock()
	defer backendsMu.RUnlock()

	for _, info := range backends {
		if strings.EqualFold(string(info.Kind), name) || strings.EqualFold(info.DisplayName, name) {
			return info, true
		}
		for _, alias := range info.Aliases {
			if strings.EqualFold(alias, name) {
				return info, true
			}
		}
	}
	return Info{}, false
}

// New builds the provider registered under name.
func New(name string, opts Options) (Provider, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNoProvider
	}
	info, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return info.New(opts)
}

// Registered returns all registered backends sorted by kind.
func Registered() []Info {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	result := make([]Info, 0, len(backends))
	for _, info := range backends {
		result = append(result, info)
	}
	slices.SortFunc(result, func(a, b Info) int {
		return cmp.Compare(a.Kind, b.Kind)
	})
	return result
}
