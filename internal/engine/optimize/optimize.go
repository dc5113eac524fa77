// Package optimize runs a document optimizer over every built markup file.
package optimize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// markupFiles selects the documents the pass rewrites.
var markupFiles = domain.NewPathSet("**/*.html")

// Pass rewrites markup files in place.
type Pass struct {
	optimizer ports.DocumentOptimizer
	resolver  ports.InputResolver
	logger    ports.Logger
	metrics   ports.MetricsRecorder
	limit     int
}

// New creates a Pass that runs at most runtime.NumCPU() files at once.
func New(
	optimizer ports.DocumentOptimizer,
	resolver ports.InputResolver,
	logger ports.Logger,
	metrics ports.MetricsRecorder,
) *Pass {
	return &Pass{
		optimizer: optimizer,
		resolver:  resolver,
		logger:    logger,
		metrics:   metrics,
		limit:     runtime.NumCPU(),
	}
}

// Run optimizes every *.html file under root and returns the number rewritten.
// A failing file is left untouched and never stops the others; all failures are
// returned together as a *domain.AggregateError.
func (p *Pass) Run(ctx context.Context, root string) (int, error) {
	files, err := p.resolver.ResolveInputs(markupFiles, root)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "root", root)
	}

	var (
		mu       sync.Mutex
		failures = make(map[string]error)
		done     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for _, rel := range files {
		g.Go(func() error {
			err := p.optimizeFile(gctx, filepath.Join(root, filepath.FromSlash(rel)))
			p.metrics.ObserveOptimize(err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[rel] = err
			} else {
				done++
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info(fmt.Sprintf("optimized %d of %d document(s)", done, len(files)))
	if len(failures) == 0 {
		return done, nil
	}

	agg := &domain.AggregateError{Kind: domain.ErrOptimizeFailed}
	for _, rel := range files {
		if err, ok := failures[rel]; ok {
			agg.Failures = append(agg.Failures, domain.Failure{Subject: rel, Err: err})
		}
	}
	return done, agg
}

func (p *Pass) optimizeFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", path)
	}
	doc, err := os.ReadFile(path) //nolint:gosec // path comes from walking the output root
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", path)
	}

	out, err := p.optimizer.Optimize(ctx, doc)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	return nil
}
