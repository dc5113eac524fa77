// Package watch re-runs tasks when the files they depend on change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultDebounce is used for bindings that declare no window.
const DefaultDebounce = 100 * time.Millisecond

// Runner executes a task reference.
type Runner interface {
	Run(ctx context.Context, ref domain.InternedString) error
}

// State is the lifecycle state of a watch binding.
type State uint8

const (
	// StateIdle means no change is waiting.
	StateIdle State = iota
	// StateDebouncing means changes were seen and the window is open.
	StateDebouncing
	// StateTriggered means the reaction is running.
	StateTriggered
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateTriggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Engine routes file system events to watch bindings.
type Engine struct {
	watcher  ports.Watcher
	runner   Runner
	notifier ports.ReloadNotifier
	logger   ports.Logger
	metrics  ports.MetricsRecorder
	settings domain.Settings
	bindings []*binding

	mu     sync.Mutex
	closed bool
	active sync.WaitGroup
}

// New creates an Engine. Bindings are activated in the given order.
func New(
	watcher ports.Watcher,
	runner Runner,
	notifier ports.ReloadNotifier,
	logger ports.Logger,
	metrics ports.MetricsRecorder,
	settings domain.Settings,
	bindings []domain.WatchBinding,
) *Engine {
	e := &Engine{
		watcher:  watcher,
		runner:   runner,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		settings: settings,
	}
	for _, spec := range bindings {
		window := spec.Debounce
		if window <= 0 {
			window = settings.Debounce
		}
		if window <= 0 {
			window = DefaultDebounce
		}
		b := &binding{spec: spec}
		b.debouncer = NewDebouncer(window, func(paths []string) {
			e.trigger(b, paths)
		})
		e.bindings = append(e.bindings, b)
	}
	return e
}

// Run starts the watcher on the project root and dispatches its events until ctx is done
// or the watcher closes its event stream.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.watcher.Start(ctx, e.settings.Root); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWatcherFailed, err.Error()), "root", e.settings.Root)
	}
	e.logger.Info(fmt.Sprintf("watching %d binding(s) under %s", len(e.bindings), e.settings.Root))

	for ev := range e.watcher.Events() {
		e.Dispatch(ctx, ev)
	}

	e.Close()
	return e.watcher.Stop()
}

// Dispatch feeds one event to every binding whose path set matches it.
// Events outside the project root or inside the output root are ignored.
func (e *Engine) Dispatch(_ context.Context, ev ports.WatchEvent) {
	rel, ok := e.relative(ev.Path)
	if !ok {
		return
	}
	for _, b := range e.bindings {
		if b.spec.Paths.Match(rel) {
			b.observe(rel)
		}
	}
}

// States returns the current state of every binding in activation order.
func (e *Engine) States() []State {
	out := make([]State, len(e.bindings))
	for i, b := range e.bindings {
		out[i] = b.currentState()
	}
	return out
}

// Close stops every open debounce window and waits for running reactions to finish.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	for _, b := range e.bindings {
		b.debouncer.Stop()
	}
	e.active.Wait()
}

func (e *Engine) relative(path string) (string, bool) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(e.settings.Root, path)
		if err != nil {
			return "", false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}

	out := strings.TrimSuffix(filepath.ToSlash(e.settings.Output), "/")
	if out != "" && out != "." && (rel == out || strings.HasPrefix(rel, out+"/")) {
		return "", false
	}
	return rel, true
}

// begin registers a reaction run unless the engine is closed.
func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.active.Add(1)
	return true
}

// trigger is the debounce callback of b. It runs the reaction, then any queued re-trigger.
func (e *Engine) trigger(b *binding, paths []string) {
	if !b.enter() {
		return
	}
	if !e.begin() {
		b.leave()
		return
	}
	defer e.active.Done()

	for {
		e.react(b, paths)
		if !b.again() {
			return
		}
		paths = nil
	}
}

func (e *Engine) react(b *binding, paths []string) {
	name := b.spec.Reaction.String()
	e.metrics.IncWatchTrigger(name)
	if len(paths) > 0 {
		e.logger.Info(fmt.Sprintf("%d change(s) detected, running %s", len(paths), name))
	} else {
		e.logger.Info("changes during run, running " + name + " again")
	}

	// Transforms are never cancelled mid-run.
	if err := e.runner.Run(context.Background(), b.spec.Reaction); err != nil {
		e.logger.Error(err)
		return
	}
	e.notifier.NotifyReload()
	e.metrics.IncReload()
}

// binding is the runtime state of one watch binding.
type binding struct {
	spec      domain.WatchBinding
	debouncer *Debouncer

	mu      sync.Mutex
	state   State
	pending bool
}

// observe records a matching change.
func (b *binding) observe(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateTriggered {
		b.pending = true
		return
	}
	b.state = StateDebouncing
	b.debouncer.Add(path)
}

// enter moves the binding to TRIGGERED. If a run is already in flight the
// trigger is queued instead and enter returns false.
func (b *binding) enter() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateTriggered {
		b.pending = true
		return false
	}
	b.state = StateTriggered
	return true
}

// again consumes the queued re-trigger. Without one the binding returns to IDLE,
// or to DEBOUNCING if a window opened meanwhile.
func (b *binding) again() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending {
		b.pending = false
		return true
	}
	b.state = StateIdle
	if b.debouncer.Active() {
		b.state = StateDebouncing
	}
	return false
}

func (b *binding) leave() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateIdle
}

func (b *binding) currentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
