package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/ports"
)

func TestConvertEvent(t *testing.T) {
	tests := []struct {
		name   string
		op     fsnotify.Op
		want   ports.WatchOp
		wantOK bool
	}{
		{name: "write", op: fsnotify.Write, want: ports.OpWrite, wantOK: true},
		{name: "create", op: fsnotify.Create, want: ports.OpCreate, wantOK: true},
		{name: "remove", op: fsnotify.Remove, want: ports.OpRemove, wantOK: true},
		{name: "rename", op: fsnotify.Rename, want: ports.OpRename, wantOK: true},
		{name: "write wins over create", op: fsnotify.Create | fsnotify.Write, want: ports.OpWrite, wantOK: true},
		{name: "chmod dropped", op: fsnotify.Chmod, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := watcher.ConvertEventExported(fsnotify.Event{Name: "/p/a.css", Op: tt.op})
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, ev.Operation)
				assert.Equal(t, "/p/a.css", ev.Path)
			}
		})
	}
}

// collect forwards watcher events to a channel.
func collect(w *watcher.Watcher) <-chan ports.WatchEvent {
	out := make(chan ports.WatchEvent, 100)
	go func() {
		defer close(out)
		for ev := range w.Events() {
			out <- ev
		}
	}()
	return out
}

// waitFor returns the first event for path, failing after a timeout.
func waitFor(t *testing.T, events <-chan ports.WatchEvent, path string) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed before %s", path)
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestWatcher_ReportsChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "scss"), 0o750))

	w, err := watcher.NewWatcher(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := collect(w)

	file := filepath.Join(root, "src", "scss", "main.scss")
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o600))
	ev := waitFor(t, events, file)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)

	// Directories created after Start are watched too.
	nested := filepath.Join(root, "src", "img")
	require.NoError(t, os.Mkdir(nested, 0o750))
	waitFor(t, events, nested)

	require.Eventually(t, func() bool {
		img := filepath.Join(nested, "logo.svg")
		_ = os.WriteFile(img, []byte("<svg/>"), 0o600)
		select {
		case ev := <-events:
			return ev.Path == img
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoredDirectory(t *testing.T) {
	root := t.TempDir()
	dist := filepath.Join(root, "dist")
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(dist, 0o750))
	require.NoError(t, os.MkdirAll(src, 0o750))

	w, err := watcher.NewWatcher(nil, nil)
	require.NoError(t, err)
	w.Ignore(dist)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := collect(w)

	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("x"), 0o600))
	marker := filepath.Join(src, "index.html")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	// Events arrive in order, so nothing from dist may precede the marker.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			require.NotEqual(t, filepath.Join(dist, "index.html"), ev.Path)
			if ev.Path == marker {
				return
			}
		case <-timeout:
			t.Fatal("no event for marker file")
		}
	}
}

func TestWatcher_UnchangedWrites(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.css")
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o600))

	w, err := watcher.NewWatcher(nil, fs.NewHasher())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	now := time.Unix(0, 0)
	w.SetClock(func() time.Time { return now })

	write := ports.WatchEvent{Path: file, Operation: ports.OpWrite}
	assert.False(t, w.Unchanged(write), "first write is a change")
	now = now.Add(10 * time.Millisecond)
	assert.True(t, w.Unchanged(write), "same content in the same save is dropped")

	now = now.Add(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("b{}"), 0o600))
	assert.False(t, w.Unchanged(write))

	assert.False(t, w.Unchanged(ports.WatchEvent{Path: file, Operation: ports.OpRemove}))
	assert.False(t, w.Unchanged(write), "remove forgets the previous content")

	missing := ports.WatchEvent{Path: filepath.Join(root, "gone.css"), Operation: ports.OpWrite}
	assert.False(t, w.Unchanged(missing))
}

func TestWatcher_ResaveIsReported(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "main.scss")
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o600))

	w, err := watcher.NewWatcher(nil, fs.NewHasher())
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	now := time.Unix(0, 0)
	w.SetClock(func() time.Time { return now })

	write := ports.WatchEvent{Path: file, Operation: ports.OpWrite}
	assert.False(t, w.Unchanged(write))

	// Saving the same bytes again re-triggers a failed build.
	now = now.Add(2 * time.Second)
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o600))
	assert.False(t, w.Unchanged(write), "re-save of unchanged file is reported")

	now = now.Add(time.Second)
	assert.False(t, w.Unchanged(write))
}

func TestWatcher_WithoutHasherReportsEveryWrite(t *testing.T) {
	w, err := watcher.NewWatcher(nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	write := ports.WatchEvent{Path: "/p/a.css", Operation: ports.OpWrite}
	assert.False(t, w.Unchanged(write))
	assert.False(t, w.Unchanged(write))
}

func TestWatcher_EventsEndOnCancel(t *testing.T) {
	root := t.TempDir()
	w, err := watcher.NewWatcher(nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := collect(w)
	cancel()

	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end")
	}
}
