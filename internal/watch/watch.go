// Package watch reports external changes to note files.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Watcher watches individual files. Editors often save by replacing the
// file, so the parent directory is watched and events are filtered by name.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	events chan string

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]bool
	timers map[string]*time.Timer
	closed bool

	done chan struct{}
}

// New starts a watcher. Changed paths arrive on Events.
func New(logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		fs:     fw,
		logger: logger,
		events: make(chan string, 32),
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
		timers: make(map[string]*time.Timer),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Events delivers the absolute path of each changed file. Bursts of writes
// to one file are collapsed into a single delivery.
func (w *Watcher) Events() <-chan string { return w.events }

// Add starts watching path. The file need not exist yet, but its directory
// must.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] {
		return nil
	}
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[path] = true
	return nil
}

// Close stops watching. Events is closed once the loop exits.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule(filepath.Clean(ev.Name))

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher", "error", err)
		}
	}
}

// schedule delivers path once it has been quiet for debounceDelay.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceDelay, func() { w.deliver(path) })
}

func (w *Watcher) deliver(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.timers, path)
	if w.closed {
		return
	}
	select {
	case w.events <- path:
	default:
		w.logger.Debug("watch channel full, dropping", "path", path)
	}
}
