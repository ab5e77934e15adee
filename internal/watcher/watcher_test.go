package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
}

func (r *recorder) onChange(path string) {
	r.mu.Lock()
	r.changed = append(r.changed, path)
	r.mu.Unlock()
}

func (r *recorder) onRemove(path string) {
	r.mu.Lock()
	r.removed = append(r.removed, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() (changed, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changed...), append([]string(nil), r.removed...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func startWatcher(t *testing.T, root string, rec *recorder, opts ...Option) *Watcher {
	t.Helper()
	opts = append([]Option{WithDebounce(50 * time.Millisecond)}, opts...)
	w := NewWatcher(root, rec.onChange, rec.onRemove, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec)

	path := filepath.Join(dir, "tools.yaml")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool {
		changed, _ := rec.snapshot()
		return len(changed) > 0
	})
	time.Sleep(150 * time.Millisecond)
	changed, _ := rec.snapshot()
	if len(changed) != 1 || changed[0] != path {
		t.Errorf("expected one debounced change for %s, got %v", path, changed)
	}
}

func TestWatcher_FilterAndRemove(t *testing.T) {
	dir := t.TempDir()
	blog := filepath.Join(dir, "blog")
	if err := os.MkdirAll(blog, 0755); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatcher(t, dir, rec, WithFilter(func(p string) bool { return filepath.Ext(p) == ".md" }))

	post := filepath.Join(blog, "post.md")
	if err := os.WriteFile(filepath.Join(blog, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(post, []byte("# Post"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		changed, _ := rec.snapshot()
		return len(changed) == 1
	})

	if err := os.Remove(post); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, removed := rec.snapshot()
		return len(removed) == 1
	})
	changed, removed := rec.snapshot()
	if changed[0] != post || removed[0] != post {
		t.Errorf("changed=%v removed=%v", changed, removed)
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, rec)

	blog := filepath.Join(dir, "blog")
	if err := os.Mkdir(blog, 0755); err != nil {
		t.Fatal(err)
	}
	// give the watcher time to register the new directory
	time.Sleep(100 * time.Millisecond)
	post := filepath.Join(blog, "later.md")
	if err := os.WriteFile(post, []byte("# Later"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		changed, _ := rec.snapshot()
		for _, c := range changed {
			if c == post {
				return true
			}
		}
		return false
	})
}

func TestWatcher_StartCreatesRootAndStopIsIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "content")
	w := NewWatcher(root, nil, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Errorf("second Start: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.Root() != root {
		t.Errorf("Root() = %q", w.Root())
	}
}
