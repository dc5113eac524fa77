package watch_test

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/watch"
	"go.uber.org/mock/gomock"
)

const window = 100 * time.Millisecond

// fakeRunner records runs and can hold each run until released.
type fakeRunner struct {
	mu    sync.Mutex
	runs  []string
	hold  chan struct{}
	fail  error
	delay time.Duration
}

func (r *fakeRunner) Run(_ context.Context, ref domain.InternedString) error {
	r.mu.Lock()
	r.runs = append(r.runs, ref.String())
	hold, fail, delay := r.hold, r.fail, r.delay
	r.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return fail
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

type engineTestMocks struct {
	notifier *mocks.MockReloadNotifier
	logger   *mocks.MockLogger
	metrics  *mocks.MockMetricsRecorder
	watcher  *mocks.MockWatcher
}

func setupEngine(t *testing.T, runner watch.Runner, bindings ...domain.WatchBinding) (*watch.Engine, engineTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := engineTestMocks{
		notifier: mocks.NewMockReloadNotifier(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		metrics:  mocks.NewMockMetricsRecorder(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
	}
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.metrics.EXPECT().IncWatchTrigger(gomock.Any()).AnyTimes()
	m.metrics.EXPECT().IncReload().AnyTimes()

	settings := domain.Settings{Root: "/project", Output: "dist", Debounce: window}
	e := watch.New(m.watcher, runner, m.notifier, m.logger, m.metrics, settings, bindings)
	return e, m
}

func cssBinding() domain.WatchBinding {
	return domain.WatchBinding{
		Paths:    domain.NewPathSet("src/scss/**/*.scss"),
		Reaction: domain.NewInternedString("css"),
	}
}

func write(path string) ports.WatchEvent {
	return ports.WatchEvent{Path: path, Operation: ports.OpWrite}
}

func TestEngine_BurstCoalescesIntoOneRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &fakeRunner{}
		e, m := setupEngine(t, runner, cssBinding())
		m.notifier.EXPECT().NotifyReload().Times(1)

		ctx := context.Background()
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		time.Sleep(10 * time.Millisecond)
		e.Dispatch(ctx, write("/project/src/scss/_vars.scss"))
		time.Sleep(10 * time.Millisecond)
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		assert.Equal(t, []watch.State{watch.StateDebouncing}, e.States())

		time.Sleep(window + 10*time.Millisecond)
		synctest.Wait()

		assert.Equal(t, 1, runner.count())
		assert.Equal(t, []watch.State{watch.StateIdle}, e.States())
	})
}

func TestEngine_EventRestartsWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &fakeRunner{}
		e, m := setupEngine(t, runner, cssBinding())
		m.notifier.EXPECT().NotifyReload().Times(1)

		ctx := context.Background()
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		time.Sleep(window - 10*time.Millisecond)
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		time.Sleep(window - 10*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, runner.count())

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, runner.count())
	})
}

func TestEngine_ChangeDuringRunQueuesExactlyOneRetrigger(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		hold := make(chan struct{})
		runner := &fakeRunner{hold: hold}
		e, m := setupEngine(t, runner, cssBinding())
		m.notifier.EXPECT().NotifyReload().Times(2)

		ctx := context.Background()
		for range 3 {
			e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		}
		time.Sleep(window + 10*time.Millisecond)
		synctest.Wait()
		require.Equal(t, 1, runner.count())
		assert.Equal(t, []watch.State{watch.StateTriggered}, e.States())

		// Several changes while the reaction runs collapse into one pending re-trigger.
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		e.Dispatch(ctx, write("/project/src/scss/_vars.scss"))
		time.Sleep(window * 3)
		synctest.Wait()
		assert.Equal(t, 1, runner.count(), "no run may start while one is in flight")

		runner.mu.Lock()
		runner.hold = nil
		runner.mu.Unlock()
		close(hold)
		synctest.Wait()

		assert.Equal(t, 2, runner.count())
		assert.Equal(t, []watch.State{watch.StateIdle}, e.States())
	})
}

func TestEngine_FailureLogsAndReturnsToIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		boom := errors.New("boom")
		runner := &fakeRunner{fail: boom}
		e, m := setupEngine(t, runner, cssBinding())
		m.logger.EXPECT().Error(boom).Times(2)
		// No reload after a failed run.
		m.notifier.EXPECT().NotifyReload().Times(0)

		ctx := context.Background()
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		time.Sleep(window + 10*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []watch.State{watch.StateIdle}, e.States())

		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		time.Sleep(window + 10*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 2, runner.count())
	})
}

func TestEngine_IgnoresUnmatchedAndOutputEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &fakeRunner{}
		anything := domain.WatchBinding{
			Paths:    domain.NewPathSet("**/*"),
			Reaction: domain.NewInternedString("all"),
		}
		e, _ := setupEngine(t, runner, cssBinding(), anything)

		ctx := context.Background()
		e.Dispatch(ctx, write("/project/dist/css/main.min.css"))
		e.Dispatch(ctx, write("/elsewhere/src/scss/main.scss"))
		assert.Equal(t, []watch.State{watch.StateIdle, watch.StateIdle}, e.States())

		time.Sleep(window * 2)
		synctest.Wait()
		assert.Equal(t, 0, runner.count())
	})
}

func TestEngine_BindingsAreIndependent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &fakeRunner{delay: 50 * time.Millisecond}
		svg := domain.WatchBinding{
			Paths:    domain.NewPathSet("src/images/**/*.svg"),
			Reaction: domain.NewInternedString("svg"),
			Debounce: 20 * time.Millisecond,
		}
		e, m := setupEngine(t, runner, cssBinding(), svg)
		m.notifier.EXPECT().NotifyReload().Times(2)

		ctx := context.Background()
		e.Dispatch(ctx, write("/project/src/scss/main.scss"))
		e.Dispatch(ctx, write("/project/src/images/logo.svg"))

		time.Sleep(30 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []watch.State{watch.StateDebouncing, watch.StateTriggered}, e.States())

		time.Sleep(window * 2)
		synctest.Wait()
		runner.mu.Lock()
		assert.ElementsMatch(t, []string{"css", "svg"}, runner.runs)
		runner.mu.Unlock()
	})
}

func TestEngine_Run(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner := &fakeRunner{}
		e, m := setupEngine(t, runner, cssBinding())
		m.notifier.EXPECT().NotifyReload().Times(1)

		events := make(chan ports.WatchEvent)
		m.watcher.EXPECT().Start(gomock.Any(), "/project").Return(nil)
		m.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
			for ev := range events {
				if !yield(ev) {
					return
				}
			}
		}))
		m.watcher.EXPECT().Stop().Return(nil)

		done := make(chan error, 1)
		go func() { done <- e.Run(context.Background()) }()

		events <- write("/project/src/scss/main.scss")
		time.Sleep(window + 10*time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, runner.count())

		close(events)
		require.NoError(t, <-done)
	})
}

func TestEngine_RunStartFailure(t *testing.T) {
	e, m := setupEngine(t, &fakeRunner{}, cssBinding())
	m.watcher.EXPECT().Start(gomock.Any(), "/project").Return(errors.New("too many open files"))

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrWatcherFailed)
}
