// Package settings persists the agent's credentials and last-used topic as a
// flat JSON object. The file carries no schema and no version: unknown keys
// are preserved, a missing or unreadable file is simply an empty store.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/flemzord/blogclaw/internal/provider"
)

// DefaultFile is the settings file name used when none is configured.
const DefaultFile = "agent_config.json"

// Well-known keys.
const (
	KeyProvider   = "llm_provider"
	KeyAPIKey     = "api_key"
	KeyWPURL      = "wp_url"
	KeyWPUser     = "wp_user"
	KeyWPPassword = "wp_password"
	KeyTopic      = "topic"
)

// ErrCorrupt is returned by Reload when the file exists but does not hold a
// JSON object. The store is left empty in that case.
var ErrCorrupt = errors.New("settings file is not a JSON object")

// Credentials is the typed view of the keys the agent needs to run a cycle.
type Credentials struct {
	Provider    string
	APIKey      string
	SiteURL     string
	User        string
	AppPassword string
	Topic       string
}

// Secrets returns the values that must never appear in logs.
func (c Credentials) Secrets() []string {
	return []string{c.APIKey, c.AppPassword}
}

// Store is a file-backed string map. All methods are safe for concurrent use.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// Open creates a store for path and loads it. The returned error is
// informational (ErrCorrupt or a read failure); the store is always usable.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultFile
	}
	s := &Store{path: path, values: map[string]string{}}
	return s, s.Reload()
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory values with the file contents.
func (s *Store) Reload() error {
	values, err := load(s.path)
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return err
}

func load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return map[string]string{}, fmt.Errorf("reading settings: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return map[string]string{}, fmt.Errorf("%w: %s", ErrCorrupt, path)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			values[k] = val
		case nil:
			values[k] = ""
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	return values, nil
}

// Save writes the whole map to disk with four-space indentation.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

func marshal(values map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Get returns the value for key, or "" when absent.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set stores value under key in memory. Call Save to persist.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Merge copies every entry of updates into the store.
func (s *Store) Merge(updates map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, updates)
}

// Snapshot returns a copy of all values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Credentials returns the typed view of the store.
func (s *Store) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Credentials{
		Provider:    s.values[KeyProvider],
		APIKey:      s.values[KeyAPIKey],
		SiteURL:     s.values[KeyWPURL],
		User:        s.values[KeyWPUser],
		AppPassword: s.values[KeyWPPassword],
		Topic:       s.values[KeyTopic],
	}
}

// Missing lists the credential keys that are empty, sorted. The API key is
// not required for the simulated provider.
func (s *Store) Missing() []string {
	return s.Credentials().Missing()
}

// keyOptional reports whether the named backend runs without an API key.
// Unknown or unset providers need one.
func keyOptional(name string) bool {
	info, ok := provider.Lookup(name)
	return ok && info.KeyOptional
}

// Missing lists the empty credential keys of c, sorted.
func (c Credentials) Missing() []string {
	var missing []string
	if c.APIKey == "" && !keyOptional(c.Provider) {
		missing = append(missing, KeyAPIKey)
	}
	if c.SiteURL == "" {
		missing = append(missing, KeyWPURL)
	}
	if c.User == "" {
		missing = append(missing, KeyWPUser)
	}
	if c.AppPassword == "" {
		missing = append(missing, KeyWPPassword)
	}
	slices.Sort(missing)
	return missing
}
