// Package watch reports changes made to an open file by other programs.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a change to the watched file.
type Event struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher follows a single file. Editors often replace files by renaming a
// temp file over them, so the parent directory is watched and events are
// filtered by name.
type Watcher struct {
	path      string
	events    chan Event
	stopChan  chan struct{}
	fsWatcher *fsnotify.Watcher
	logger    *slog.Logger

	mutex   sync.Mutex
	running bool
}

// New creates a watcher for path. Call Start to begin delivering events.
func New(path string, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		path:      abs,
		events:    make(chan Event, 10),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
		logger:    logger,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events delivers changes to the file. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start runs the event loop in its own goroutine.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	select {
	case <-w.stopChan:
		return fmt.Errorf("watcher stopped")
	default:
	}
	w.running = true

	go w.loop()
	w.logger.Debug("Watching file", "path", w.path)
	return nil
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			ev := Event{Path: w.path, Op: event.Op, Timestamp: time.Now()}
			// Never block the loop; a pending event already triggers a reload.
			select {
			case w.events <- ev:
			case <-w.stopChan:
				return
			default:
				w.logger.Debug("Event channel is full, dropped event", "path", w.path)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

// Stop ends the event loop and closes the Events channel. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}
	close(w.stopChan)
	if err := w.fsWatcher.Close(); err != nil {
		w.logger.Error("Error closing fsnotify watcher", "error", err)
	}
	if !w.running {
		// no loop to close it
		close(w.events)
	}
	w.running = false
}
