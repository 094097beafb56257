package settings

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	_ "github.com/flemzord/blogclaw/modules/provider/simulated"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want empty", got)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "garbage", content: "{not json"},
		{name: "array", content: `["a","b"]`},
		{name: "null", content: "null"},
		{name: "empty", content: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Open(writeFile(t, tt.content))
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Open() error = %v, want ErrCorrupt", err)
			}
			if got := s.Snapshot(); len(got) != 0 {
				t.Errorf("Snapshot() = %v, want empty", got)
			}
		})
	}
}

func TestOpen_ReadsValues(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `{
    "llm_provider": "Google Gemini",
    "api_key": "k",
    "wp_url": "https://blog.example.com",
    "wp_user": "admin",
    "wp_password": "abcd efgh",
    "topic": "Travel",
    "retries": 3,
    "extra": null
}`)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Credentials{
		Provider:    "Google Gemini",
		APIKey:      "k",
		SiteURL:     "https://blog.example.com",
		User:        "admin",
		AppPassword: "abcd efgh",
		Topic:       "Travel",
	}
	if got := s.Credentials(); got != want {
		t.Errorf("Credentials() = %+v, want %+v", got, want)
	}
	if got := s.Get("retries"); got != "3" {
		t.Errorf("Get(retries) = %q, want 3", got)
	}
	if got := s.Get("extra"); got != "" {
		t.Errorf("Get(extra) = %q, want empty", got)
	}
}

func TestSave_RoundTripAndFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", DefaultFile)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Merge(map[string]string{
		KeyProvider: "OpenAI",
		KeyWPURL:    "https://blog.example.com/?a=1&b=2",
	})
	s.Set(KeyTopic, "Food")

	if err := s.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "\n    \"llm_provider\": \"OpenAI\"") {
		t.Errorf("expected four-space indentation, got:\n%s", data)
	}
	if !strings.Contains(string(data), "a=1&b=2") {
		t.Errorf("expected unescaped ampersand, got:\n%s", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(reopened.Snapshot(), s.Snapshot()) {
		t.Errorf("round trip = %v, want %v", reopened.Snapshot(), s.Snapshot())
	}
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `{"topic": "Tech"}`)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"topic": "Health"}`), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Get(KeyTopic); got != "Health" {
		t.Errorf("Get(topic) = %q, want Health", got)
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	t.Parallel()

	s, _ := Open(filepath.Join(t.TempDir(), DefaultFile))
	s.Set(KeyTopic, "Tech")

	snap := s.Snapshot()
	snap[KeyTopic] = "changed"

	if got := s.Get(KeyTopic); got != "Tech" {
		t.Errorf("Get(topic) = %q, want Tech", got)
	}
}

func TestMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		creds Credentials
		want  []string
	}{
		{
			name: "empty",
			want: []string{KeyAPIKey, KeyWPPassword, KeyWPURL, KeyWPUser},
		},
		{
			name: "complete",
			creds: Credentials{
				Provider: "OpenAI", APIKey: "k", SiteURL: "u", User: "n", AppPassword: "p",
			},
		},
		{
			name:  "simulated needs no api key",
			creds: Credentials{Provider: "Simulated", SiteURL: "u", User: "n", AppPassword: "p"},
		},
		{
			name:  "unknown provider needs a key",
			creds: Credentials{Provider: "Sim", SiteURL: "u", User: "n", AppPassword: "p"},
			want:  []string{KeyAPIKey},
		},
		{
			name:  "password missing",
			creds: Credentials{Provider: "OpenAI", APIKey: "k", SiteURL: "u", User: "n"},
			want:  []string{KeyWPPassword},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.creds.Missing(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredentials_Secrets(t *testing.T) {
	t.Parallel()

	c := Credentials{APIKey: "k", AppPassword: "p", User: "admin"}
	if got := c.Secrets(); !reflect.DeepEqual(got, []string{"k", "p"}) {
		t.Errorf("Secrets() = %v", got)
	}
}
