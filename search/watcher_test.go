package search

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// recordingIndexer is a thread-safe NoteIndexer fake for watcher tests.
type recordingIndexer struct {
	mu       sync.Mutex
	updates  []string
	rebuilds int
}

func (r *recordingIndexer) UpdateFile(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, name)
	return nil
}

func (r *recordingIndexer) Rebuild() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuilds++
	return nil
}

func (r *recordingIndexer) All() ([]Entry, error)              { return nil, nil }
func (r *recordingIndexer) Query(string) ([]Entry, error)      { return nil, nil }
func (r *recordingIndexer) ExactTitle(string) ([]Entry, error) { return nil, nil }
func (r *recordingIndexer) Open() error                        { return nil }
func (r *recordingIndexer) Close() error                       { return nil }

func (r *recordingIndexer) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func (r *recordingIndexer) lastUpdate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return ""
	}
	return r.updates[len(r.updates)-1]
}

func (r *recordingIndexer) rebuildCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuilds
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startWatcher(t *testing.T, idx NoteIndexer, root string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, idx, root, ".md", nil) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	})
	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
}

func TestWatchIndexesNewAndChangedFiles(t *testing.T) {
	root := t.TempDir()
	idx := &recordingIndexer{}
	startWatcher(t, idx, root)

	if err := os.WriteFile(filepath.Join(root, "alpha.md"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "create to be indexed", func() bool { return idx.updateCount() > 0 })
	if got := idx.lastUpdate(); got != "alpha.md" {
		t.Fatalf("indexed %q, want alpha.md", got)
	}

	before := idx.updateCount()
	if err := os.WriteFile(filepath.Join(root, "alpha.md"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "write to be indexed", func() bool { return idx.updateCount() > before })
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	idx := &recordingIndexer{}
	startWatcher(t, idx, root)

	if err := os.WriteFile(filepath.Join(root, "scratch.txt"), []byte("not a note"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if n := idx.updateCount(); n != 0 {
		t.Fatalf("expected no index updates for .txt files, got %d", n)
	}
}

func TestWatchRebuildsOnRemove(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "alpha.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx := &recordingIndexer{}
	startWatcher(t, idx, root)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "debounced rebuild", func() bool { return idx.rebuildCount() > 0 })
}
