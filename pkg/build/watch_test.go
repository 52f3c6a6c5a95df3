package build

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func runWatcher(t *testing.T, w *Watcher) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(context.Context) error {
			calls.Add(1)
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return &calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	calls := runWatcher(t, w)

	for _, name := range []string{"a.tex", "b.tex", "c.tex"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange called %d times, want 1", got)
	}
}

func TestWatcherIgnoresOutput(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	calls := runWatcher(t, w)

	if err := os.WriteFile(filepath.Join(dir, "output.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("onChange called %d times for output.pdf, want 0", got)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	calls := runWatcher(t, w)

	sub := filepath.Join(dir, "chapters")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
	// Give the loop a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)
	before := calls.Load()

	if err := os.WriteFile(filepath.Join(sub, "one.tex"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() > before })
}

func TestIgnored(t *testing.T) {
	tests := map[string]bool{
		"/ws/docs/report/output.pdf":          true,
		"/ws/docs/report/.texman-123.pdf":     true,
		"/ws/docs/report/.#intro.tex":         true,
		"/ws/docs/report/intro.tex~":          true,
		"/ws/docs/report/.intro.tex.swp":      true,
		"/ws/docs/report/intro.tex":           false,
		"/ws/prelude/main.tex":                false,
		"/ws/docs/report/metadata.toml":       false,
	}
	for path, want := range tests {
		if got := ignored(path); got != want {
			t.Errorf("ignored(%q) = %v, want %v", path, got, want)
		}
	}
}
