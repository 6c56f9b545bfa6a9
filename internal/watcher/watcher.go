// Package watcher reacts to new or changed capture files.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a capture directory for files matching a glob pattern.
type Watcher struct {
	dir      string
	pattern  string
	onChange func()
	debounce time.Duration
}

// New creates a directory watcher. onChange fires after writes settle.
func New(dir, pattern string, onChange func()) *Watcher {
	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until the context is cancelled or an error occurs. Collectors
// write capture files in bursts, so rapid events coalesce into one callback.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	log.Printf("Watching %s for %s", w.dir, w.pattern)

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			matched, err := filepath.Match(w.pattern, filepath.Base(event.Name))
			if err != nil || !matched {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				name := event.Name
				debounceTimer = time.AfterFunc(w.debounce, func() {
					log.Printf("Capture changed: %s", name)
					w.onChange()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return ctx.Err()
		}
	}
}
