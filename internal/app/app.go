// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/preview"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/optimize"
	"go.trai.ch/kiln/internal/engine/watch"
	"go.trai.ch/zerr"
)

// TransformCatalog selects the implementation of a transform kind.
type TransformCatalog interface {
	Lookup(kind string) (ports.Transformer, error)
}

// WatcherFactory creates the file system watcher for a dev session.
type WatcherFactory func(settings domain.Settings) (ports.Watcher, error)

// PreviewFactory creates the preview server for a dev session.
type PreviewFactory func(settings domain.PreviewSettings) ports.PreviewServer

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	catalog      TransformCatalog
	resolver     ports.InputResolver
	hasher       ports.Hasher
	logger       ports.Logger
	metrics      ports.MetricsRecorder
	optimizer    ports.DocumentOptimizer

	stdout     io.Writer
	stderr     io.Writer
	newWatcher WatcherFactory
	newPreview PreviewFactory
}

// New creates a new App instance. metricsHandler is served by the preview at /metrics.
func New(
	loader ports.ConfigLoader,
	catalog TransformCatalog,
	resolver ports.InputResolver,
	hasher ports.Hasher,
	log ports.Logger,
	metrics ports.MetricsRecorder,
	metricsHandler http.Handler,
	optimizer ports.DocumentOptimizer,
) *App {
	a := &App{
		configLoader: loader,
		catalog:      catalog,
		resolver:     resolver,
		hasher:       hasher,
		logger:       log,
		metrics:      metrics,
		optimizer:    optimizer,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	a.newWatcher = func(s domain.Settings) (ports.Watcher, error) {
		w, err := watcher.NewWatcher(a.logger, a.hasher)
		if err != nil {
			return nil, err
		}
		w.Ignore(s.OutputPath())
		return w, nil
	}
	a.newPreview = func(s domain.PreviewSettings) ports.PreviewServer {
		return preview.NewServer(s.Host, s.Port, a.logger, metricsHandler)
	}
	return a
}

// WithOutput sets the writers task progress is rendered to.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithWatcherFactory replaces the file system watcher, e.g. with a synthetic event source.
func (a *App) WithWatcherFactory(f WatcherFactory) *App {
	a.newWatcher = f
	return a
}

// WithPreviewFactory replaces the preview server.
func (a *App) WithPreviewFactory(f PreviewFactory) *App {
	a.newPreview = f
	return a
}

// RunOptions configuration for the Dev, Build and Optimize methods.
type RunOptions struct {
	// ConfigPath is the config file or the directory holding kiln.yaml.
	ConfigPath string
	// NoClean keeps the output root from a previous run.
	NoClean bool
	// Port overrides the preview port when non-zero.
	Port int
	// OutputMode selects the progress renderer: auto, compact or linear.
	OutputMode string
	// JSON switches logs to JSON lines.
	JSON bool
}

// Build runs the full build once: clean, creation sequence and css inlining.
func (a *App) Build(ctx context.Context, opts RunOptions) error {
	s, err := a.open(opts, nil)
	if err != nil {
		return err
	}
	defer s.close(context.WithoutCancel(ctx))

	if err := s.orchestrator.Build(ctx); err != nil {
		return buildFailure(err)
	}
	a.logger.Info("build finished")
	return nil
}

// Dev runs the full build, serves the output root and re-runs the watch
// reactions on every change until ctx is cancelled.
func (a *App) Dev(ctx context.Context, opts RunOptions) error {
	p, err := a.load(opts)
	if err != nil {
		return err
	}

	server := a.newPreview(p.Settings.Preview)
	defer func() {
		if err := server.Close(); err != nil {
			a.logger.Error(err)
		}
	}()

	s, err := a.session(p, opts, server)
	if err != nil {
		return err
	}
	defer s.close(context.WithoutCancel(ctx))

	if err := s.orchestrator.Start(ctx); err != nil {
		return buildFailure(err)
	}

	w, err := a.newWatcher(p.Settings)
	if err != nil {
		return zerr.Wrap(domain.ErrWatcherFailed, err.Error())
	}
	engine := watch.New(w, s.sequencer, server, a.logger, a.metrics, p.Settings, p.Watches)
	return engine.Run(ctx)
}

// Optimize runs the document optimizer over every markup file in the output root.
func (a *App) Optimize(ctx context.Context, opts RunOptions) error {
	p, err := a.load(opts)
	if err != nil {
		return err
	}

	pass := optimize.New(a.optimizer, a.resolver, a.logger, a.metrics)
	_, err = pass.Run(ctx, p.Settings.OutputPath())
	var agg *domain.AggregateError
	if errors.As(err, &agg) {
		for _, f := range agg.Failures {
			a.logger.Error(zerr.With(f.Err, "file", f.Subject))
		}
	}
	if err != nil {
		return errors.Join(domain.ErrOptimizeFailed, err)
	}
	return nil
}

// buildFailure marks task failures, which the renderer has already reported, as ErrBuildFailed.
// Anything else, such as a clean or bind error, is returned as is.
func buildFailure(err error) error {
	if errors.Is(err, domain.ErrTransformFailed) || errors.Is(err, domain.ErrParallelRunFailed) {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	return err
}

// load reads the pipeline and applies the command line overrides.
func (a *App) load(opts RunOptions) (*domain.Pipeline, error) {
	if j, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		j.SetJSON(opts.JSON)
	}

	path := opts.ConfigPath
	if path == "" {
		path = "."
	}
	p, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if opts.NoClean {
		p.Settings.CleanOnStart = false
	}
	if opts.Port != 0 {
		p.Settings.Preview.Port = opts.Port
	}
	if err := p.Settings.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *App) open(opts RunOptions, server ports.PreviewServer) (*session, error) {
	p, err := a.load(opts)
	if err != nil {
		return nil, err
	}
	return a.session(p, opts, server)
}

// session builds the registry, renderer and engines for one invocation.
func (a *App) session(p *domain.Pipeline, opts RunOptions, server ports.PreviewServer) (*session, error) {
	reg, err := buildRegistry(p, a.catalog)
	if err != nil {
		return nil, err
	}

	mode := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	renderer := detector.NewRenderer(mode, a.stdout, a.stderr)
	provider := telemetry.NewProvider(renderer)
	tracer := telemetry.NewOTelTracer(provider, "kiln").WithRenderer(renderer)

	return newSession(p, reg, a.resolver, tracer, renderer, provider, a.metrics, a.logger, server)
}
