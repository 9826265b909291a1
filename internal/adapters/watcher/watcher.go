// Package watcher re-triggers builds when the sources of a module graph change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"unique"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent

	mu      sync.Mutex
	watched map[unique.Handle[string]]struct{}
}

// NewWatcher creates a new file system watcher. Watch errors reported by the
// operating system are logged as warnings.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Join(domain.ErrWatchFailed, err)
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		watched:   make(map[unique.Handle[string]]struct{}),
	}, nil
}

// Start begins converting fsnotify events until ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	go w.processEvents(ctx)
	return nil
}

// Watch replaces the set of watched directories. Directories already watched
// are kept, new ones are added and the rest are removed.
func (w *Watcher) Watch(dirs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	desired := make(map[unique.Handle[string]]struct{}, len(dirs))
	for _, dir := range dirs {
		desired[unique.Make(dir)] = struct{}{}
	}

	for handle := range w.watched {
		if _, ok := desired[handle]; ok {
			continue
		}
		// The directory may already be gone, which removes the watch implicitly.
		_ = w.fsWatcher.Remove(handle.Value())
		delete(w.watched, handle)
	}

	for handle := range desired {
		if _, ok := w.watched[handle]; ok {
			continue
		}
		if err := w.fsWatcher.Add(handle.Value()); err != nil {
			return zerr.With(errors.Join(domain.ErrWatchFailed, err), "dir", handle.Value())
		}
		w.watched[handle] = struct{}{}
	}

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn(fmt.Sprintf("watcher: file system error: %v", err))
			}
		}
	}
}

// convertEvent maps an fsnotify event to a ports.WatchEvent. Permission
// changes are dropped.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
