// Package notify turns outside changes into layout triggers.
//
// [FileWatcher] reports edits to a scene file so the CLI can re-resolve it,
// and [Debouncer] coalesces bursts of triggers (file saves, viewport resizes)
// into a single call.
package notify

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Event reports that the watched file changed.
type Event struct {
	Path string
	Op   string
	At   time.Time
}

// WatchOption configures a FileWatcher.
type WatchOption func(*FileWatcher)

// WithDebounce sets the quiet period after the last filesystem event.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *FileWatcher) { w.debounce = NewDebouncer(d) }
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(l *log.Logger) WatchOption {
	return func(w *FileWatcher) { w.logger = l }
}

// FileWatcher watches a single file. It watches the file's directory rather
// than the file itself so editors that save by rename are still seen.
type FileWatcher struct {
	path     string
	dir      string
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *log.Logger
	events   chan Event

	mu       sync.Mutex
	running  bool
	closed   bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher for path. Call Start to begin watching
// and Stop to release it.
func NewFileWatcher(path string, opts ...WatchOption) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &FileWatcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		watcher:  fw,
		debounce: NewDebouncer(DefaultDebounce),
		logger:   log.New(io.Discard),
		events:   make(chan Event, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string { return w.path }

// Events delivers one event per burst of changes. The channel is closed by
// Stop.
func (w *FileWatcher) Events() <-chan Event { return w.events }

// Start begins watching. It is non-blocking; events are delivered until ctx
// is cancelled or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watcher for %s is stopped", w.path)
	}
	if w.running {
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.logger.Debug("watching", "path", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops watching, waits for the event loop to exit and closes the
// Events channel. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()

		close(w.stopCh)
		if running {
			<-w.doneCh
		}
		w.debounce.Cancel()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}

		w.mu.Lock()
		w.closed = true
		close(w.events)
		w.mu.Unlock()
		w.logger.Debug("stopped watching", "path", w.path)
	})
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *FileWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}

	var op string
	switch {
	case ev.Has(fsnotify.Write):
		op = "write"
	case ev.Has(fsnotify.Create):
		op = "create"
	case ev.Has(fsnotify.Rename):
		op = "rename"
	default:
		return
	}
	w.logger.Debug("file event", "op", op, "path", ev.Name)

	e := Event{Path: w.path, Op: op, At: time.Now()}
	w.debounce.Debounce(func() { w.emit(e) })
}

// emit delivers e unless an undelivered event is already queued, which
// covers this change too.
func (w *FileWatcher) emit(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- e:
	default:
	}
}
