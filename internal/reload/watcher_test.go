package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func startWatcher(t *testing.T, paths ...string) *Watcher {
	t.Helper()
	w := NewWatcher(WatcherConfig{Paths: paths, Debounce: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt := <-w.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file change event")
		return Event{}
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_config.json")
	writeFile(t, path, "{}")

	w := startWatcher(t, path)
	writeFile(t, path, `{"topic": "Travel"}`)

	evt := nextEvent(t, w)
	if evt.Type != EventModified {
		t.Errorf("got event type %q, want %q", evt.Type, EventModified)
	}
	if evt.Path != path {
		t.Errorf("got path %q, want %q", evt.Path, path)
	}
}

func TestWatcher_DetectsCreateByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_config.json")

	w := startWatcher(t, path)

	tmp := filepath.Join(dir, "agent_config.json.tmp")
	writeFile(t, tmp, "{}")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if evt := nextEvent(t, w); evt.Path != path {
		t.Errorf("got path %q, want %q", evt.Path, path)
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogclaw.yaml")
	writeFile(t, path, "a")

	w := startWatcher(t, path)
	for i := range 5 {
		writeFile(t, path, string(rune('a'+i)))
	}

	nextEvent(t, w)
	select {
	case evt := <-w.Events():
		t.Errorf("unexpected second event %+v", evt)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_config.json")
	writeFile(t, path, "{}")

	w := startWatcher(t, path)
	writeFile(t, filepath.Join(dir, "other.json"), "{}")

	select {
	case evt := <-w.Events():
		t.Errorf("unexpected event %+v", evt)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_Removed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_config.json")
	writeFile(t, path, "{}")

	w := startWatcher(t, path)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if evt := nextEvent(t, w); evt.Type != EventRemoved {
		t.Errorf("got event type %q, want %q", evt.Type, EventRemoved)
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{"x"}})
	w.Stop()
	w.Stop()
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{filepath.Join(t.TempDir(), "nope", "file.json")}})
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error for a missing directory")
	}
	w.Stop()
}
