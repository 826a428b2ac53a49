// Package watcher provides a debounced file watcher used by the watch
// command to re-run batch checks when the input file changes. Rapid
// successive write events (editors often emit several per save) are
// coalesced into a single notification.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler is invoked once per debounced change of the watched file.
type ChangeHandler func(path string)

// FileWatcher watches a single file with debouncing.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	delay    time.Duration
	handlers []ChangeHandler
	mu       sync.Mutex
}

// New creates a watcher for path. Events are debounced by delay.
func New(path string, delay time.Duration) (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	// Watch the directory, not the file: editors that replace files on
	// save (rename + create) would otherwise drop the watch.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher: fsw,
		path:    abs,
		delay:   delay,
	}, nil
}

// OnChange registers a handler for debounced changes.
func (w *FileWatcher) OnChange(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Watch blocks processing events until ctx is cancelled or the
// underlying watcher fails.
func (w *FileWatcher) Watch(ctx context.Context) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.delay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.mu.Lock()
			handlers := make([]ChangeHandler, len(w.handlers))
			copy(handlers, w.handlers)
			w.mu.Unlock()
			for _, h := range handlers {
				h(w.path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}
