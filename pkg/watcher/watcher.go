package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 300 * time.Millisecond

// Watcher logs filesystem changes under the sandbox root that arrive from
// outside the protocol, giving the operator an audit trail next to the
// request log. It never blocks or influences request handling.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	debounce map[string]*time.Timer
	logger   *slog.Logger
}

func New(root string) *Watcher {
	return &Watcher{root: root, debounce: make(map[string]*time.Timer)}
}

func (w *Watcher) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	if err := w.addRecursive(w.root); err != nil {
		_ = watcher.Close()
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if isChange(event) {
				w.scheduleLog(event)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher_error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func isChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// scheduleLog debounces bursts of events on the same path before logging.
func (w *Watcher) scheduleLog(event fsnotify.Event) {
	path := event.Name
	op := event.Op.String()

	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.logInfo("root_changed", "path", path, "op", op)
	})
	w.mu.Unlock()
}

func (w *Watcher) logInfo(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Watcher) logError(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Error(msg, args...)
	}
}
