// Package watcher implements recursive file system watching with fsnotify.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// burstWindow bounds how close a repeated write must follow the previous one
// to count as part of the same save.
const burstWindow = 100 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
//
// When a hasher is configured, a write that repeats the previous write's content
// within burstWindow is dropped, so a save reported as several writes triggers
// once. Saving the same content again later is reported.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	hasher    ports.Hasher
	events    chan ports.WatchEvent
	now       func() time.Time

	mu      sync.Mutex
	ignored map[string]bool
	writes  map[string]lastWrite
}

// lastWrite is the content hash of a file's previous write and when it was seen.
type lastWrite struct {
	sum string
	at  time.Time
}

// NewWatcher creates a new file system watcher. hasher may be nil.
func NewWatcher(logger ports.Logger, hasher ports.Hasher) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create fsnotify watcher")
	}
	return &Watcher{
		fsWatcher: fw,
		logger:    logger,
		hasher:    hasher,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		now:       time.Now,
		ignored:   make(map[string]bool),
		writes:    make(map[string]lastWrite),
	}, nil
}

// Ignore excludes the given directories, and everything below them, from watching.
// It must be called before Start.
func (w *Watcher) Ignore(dirs ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, dir := range dirs {
		w.ignored[filepath.Clean(dir)] = true
	}
}

// Start watches root and every directory below it.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range w.directories(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events.
// It ends when the watcher stops or the context passed to Start is cancelled.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// directories yields root and every directory below it that is not skipped.
func (w *Watcher) directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.skip(path) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) skip(dir string) bool {
	if skippedDirs[filepath.Base(dir)] {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ignored[filepath.Clean(dir)]
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
			if !ok || w.unchanged(watchEvent) {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

			if watchEvent.Operation == ports.OpCreate {
				w.watchNewDirectory(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("file watcher error: " + err.Error())
			}
		}
	}
}

// watchNewDirectory adds a directory created after Start, with its subdirectories.
func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.skip(path) {
		return
	}
	for dir := range w.directories(path) {
		_ = w.fsWatcher.Add(dir)
	}
}

// unchanged reports whether a write repeats the content of the previous write
// to the same file within burstWindow.
func (w *Watcher) unchanged(ev ports.WatchEvent) bool {
	if w.hasher == nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if ev.Operation != ports.OpWrite {
		delete(w.writes, ev.Path)
		return false
	}

	sum, err := w.hasher.HashFiles([]string{ev.Path})
	if err != nil {
		delete(w.writes, ev.Path)
		return false
	}
	now := w.now()
	prev, seen := w.writes[ev.Path]
	w.writes[ev.Path] = lastWrite{sum: sum, at: now}
	return seen && prev.sum == sum && now.Sub(prev.at) < burstWindow
}

// convertEvent maps an fsnotify event to a ports.WatchEvent. Chmod-only events are dropped.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	ev := ports.WatchEvent{Path: event.Name}
	switch {
	case event.Has(fsnotify.Write):
		ev.Operation = ports.OpWrite
	case event.Has(fsnotify.Create):
		ev.Operation = ports.OpCreate
	case event.Has(fsnotify.Remove):
		ev.Operation = ports.OpRemove
	case event.Has(fsnotify.Rename):
		ev.Operation = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ev, true
}
