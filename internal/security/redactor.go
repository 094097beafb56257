package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches settings keys that hold secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|key|credential)`)

// Redactor replaces secret values in strings and maps with RedactPlaceholder.
// Regex patterns catch known API key formats; literals catch the credentials
// read from the settings file, which are swapped wholesale on every reload.
// All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: DefaultPatterns(),
	}
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds a literal secret value. Empty strings are ignored.
func (r *Redactor) AddLiteral(secret string) {
	if secret == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// SetLiterals replaces every literal with secrets. Empty values are skipped.
// Called after the settings file changes so stale credentials stop being
// matched and new ones start.
func (r *Redactor) SetLiterals(secrets ...string) {
	literals := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			literals = append(literals, s)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = literals
}

// Redact replaces all known secret patterns and literal values in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}

	return s
}

// RedactStrings returns a copy of m with secret-named keys masked and
// literal secrets removed from every other value. Used by the settings
// display endpoints.
func (r *Redactor) RedactStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch {
		case v == "":
			out[k] = v
		case secretKeyPattern.MatchString(k):
			out[k] = RedactPlaceholder
		default:
			out[k] = r.Redact(v)
		}
	}
	return out
}

// DefaultPatterns returns compiled regex patterns for the API key formats of
// the supported generation backends, plus HTTP basic credentials.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Anthropic: sk-ant-...
		regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]{20,}`),
		// OpenAI: sk-... and sk-proj-...
		regexp.MustCompile(`sk-(proj-)?[a-zA-Z0-9\-_]{20,}`),
		// Google AI Studio: AIza + 35 chars
		regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`),
		// Authorization headers that end up in error bodies.
		regexp.MustCompile(`(?i)(basic|bearer) [a-zA-Z0-9+/=._\-]{8,}`),
	}
}
