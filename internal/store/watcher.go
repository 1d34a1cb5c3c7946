package store

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned for namespaces that do not live on disk.
var ErrNotWatchable = errors.New("namespace cannot be watched")

// Watcher reports writes to a namespace made by any process.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	// prefix limits events to files starting with it (sqlite backend);
	// empty means every file in dir is a key (file backend).
	prefix   string
	onChange func(key string)
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewWatcher creates a watcher for ns. onChange receives the changed key,
// or "" when the backend cannot tell which key changed.
func NewWatcher(ns Namespace, onChange func(key string), logger *slog.Logger) (*Watcher, error) {
	loc, ok := ns.(Locator)
	if !ok {
		return nil, ErrNotWatchable
	}
	if logger == nil {
		logger = slog.Default()
	}

	dir, prefix := loc.Location(), ""
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		prefix = filepath.Base(dir)
		dir = filepath.Dir(dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		dir:      dir,
		prefix:   prefix,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Calling Start twice is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			name := filepath.Base(event.Name)
			key := name
			if w.prefix != "" {
				if !strings.HasPrefix(name, w.prefix) {
					continue
				}
				key = ""
			}

			w.logger.Debug("namespace changed", "file", event.Name, "op", event.Op.String())
			if w.onChange != nil {
				w.onChange(key)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("namespace watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	return w.watcher.Close()
}
