package watcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// logBuffer is a writer safe to share between the watcher goroutine and the
// test goroutine.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcherLogsRootChanges(t *testing.T) {
	root := t.TempDir()
	buf := &logBuffer{}

	w := New(root)
	w.SetLogger(slog.New(slog.NewTextHandler(buf, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// keep touching the file until the event makes it through the debounce
	path := filepath.Join(root, "note.txt")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
		out := buf.String()
		if strings.Contains(out, "root_changed") && strings.Contains(out, "note.txt") {
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Fatalf("expected canceled, got %v", err)
			}
			return
		}
	}
	t.Fatalf("no change logged, output: %s", buf.String())
}

func TestWatcherMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"))
	if err := w.Start(context.Background()); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
