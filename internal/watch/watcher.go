// Package watch triggers index refreshes when the scanned tree changes.
// It watches the base directory recursively with fsnotify and coalesces
// bursts of events into a single refresh callback after a quiet period.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default quiet period before a change fires the
// refresh callback.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a directory tree and calls onChange once per burst of
// filesystem activity. Any create, write, remove, or rename under the
// tree counts; a rescan re-reads everything anyway, so there is no point
// distinguishing event types.
type Watcher struct {
	watcher  *fsnotify.Watcher
	rootDir  string
	onChange func()
	errors   chan error
	done     chan struct{}

	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	closed   bool
}

// New creates a Watcher over rootDir. The onChange callback runs on the
// watcher's goroutine after the debounce quiet period; it should hand off
// long work (like a rescan) rather than block. A debounce of 0 uses
// DefaultDebounce.
func New(rootDir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		rootDir:  filepath.Clean(rootDir),
		onChange: onChange,
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
		debounce: debounce,
	}

	if err := w.addRecursive(w.rootDir); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()
	return w, nil
}

// Errors exposes watcher errors for logging. The channel is never closed;
// errors are dropped when it is full.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and cancels any pending refresh trigger.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}

// addRecursive adds dir and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				if os.IsPermission(err) {
					return nil
				}
				return err
			}
		}
		return nil
	})
}

// processEvents drains fsnotify events until Close.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleEvent starts watching newly created directories and arms the
// debounce timer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				select {
				case w.errors <- err:
				default:
				}
			}
		}
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write),
		event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
	default:
		// chmod only
		return
	}

	w.arm()
}

// arm (re)starts the quiet-period timer; the callback fires once the
// burst settles.
func (w *Watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}
