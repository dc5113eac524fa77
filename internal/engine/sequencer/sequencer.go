// Package sequencer runs task references in order or concurrently.
package sequencer

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/registry"
	"golang.org/x/sync/errgroup"
)

// Sequencer executes tasks from a registry.
type Sequencer struct {
	registry *registry.Registry
	resolver ports.InputResolver
	tracer   ports.Tracer
	metrics  ports.MetricsRecorder
	settings domain.Settings
}

// New creates a new Sequencer.
func New(
	reg *registry.Registry,
	resolver ports.InputResolver,
	tracer ports.Tracer,
	metrics ports.MetricsRecorder,
	settings domain.Settings,
) *Sequencer {
	return &Sequencer{
		registry: reg,
		resolver: resolver,
		tracer:   tracer,
		metrics:  metrics,
		settings: settings,
	}
}

// Run resolves ref and executes it. Composites run with their declared mode.
func (s *Sequencer) Run(ctx context.Context, ref domain.InternedString) error {
	entry, err := s.registry.Resolve(ref)
	if err != nil {
		return err
	}
	if !entry.IsComposite() {
		return s.runTransform(ctx, entry)
	}

	c := entry.Composite
	ctx, span := s.tracer.Start(ctx, c.Name.String(), ports.WithKind("composite"))
	defer span.End()
	span.SetAttribute("mode", string(c.Mode))

	if c.Mode == domain.ModeParallel {
		err = s.RunParallel(ctx, c.Members)
	} else {
		err = s.RunSequential(ctx, c.Members)
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// RunSequential executes refs one after another.
// The first failure aborts the run; later refs are never started.
func (s *Sequencer) RunSequential(ctx context.Context, refs []domain.InternedString) error {
	for _, ref := range refs {
		if err := s.Run(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// RunParallel starts every ref concurrently and waits for all of them.
// A failing ref never aborts its siblings. Failures are returned together
// as a *domain.AggregateError in ref order.
func (s *Sequencer) RunParallel(ctx context.Context, refs []domain.InternedString) error {
	errs := make([]error, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			errs[i] = s.Run(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()

	agg := &domain.AggregateError{Kind: domain.ErrParallelRunFailed}
	for i, err := range errs {
		if err != nil {
			agg.Failures = append(agg.Failures, domain.Failure{Subject: refs[i].String(), Err: err})
		}
	}
	if len(agg.Failures) > 0 {
		return agg
	}
	return nil
}

// Plan lists the transforms refs expand to, in the order a sequential run would start them.
func (s *Sequencer) Plan(refs ...domain.InternedString) ([]string, error) {
	var plan []string
	seen := make(map[domain.InternedString]bool)

	var walk func(ref domain.InternedString) error
	walk = func(ref domain.InternedString) error {
		entry, err := s.registry.Resolve(ref)
		if err != nil {
			return err
		}
		if !entry.IsComposite() {
			if !seen[ref] {
				seen[ref] = true
				plan = append(plan, ref.String())
			}
			return nil
		}
		for _, member := range entry.Composite.Members {
			if err := walk(member); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ref := range refs {
		if err := walk(ref); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (s *Sequencer) runTransform(ctx context.Context, entry registry.Entry) (err error) {
	t := entry.Transform
	name := t.Name.String()

	ctx, span := s.tracer.Start(ctx, name, ports.WithKind("transform"))
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		s.metrics.ObserveTask(name, time.Since(start), err)
	}()

	files, err := s.resolver.ResolveInputs(t.Input, s.settings.Root)
	if err != nil {
		return &domain.TaskError{Task: name, Err: err}
	}
	span.SetAttribute("kind", t.Kind)
	span.SetAttribute("inputs", len(files))

	produced, err := entry.Transformer.Apply(ctx, ports.TransformRequest{
		Name:     name,
		Root:     s.settings.Root,
		Input:    t.Input,
		Files:    files,
		Output:   t.Output,
		Options:  t.Options,
		Settings: s.settings,
		Log:      span,
	})
	if err != nil {
		return &domain.TaskError{Task: name, Err: err}
	}
	span.SetAttribute("outputs", len(produced))

	for _, p := range produced {
		_, _ = span.Write([]byte(p + "\n"))
	}
	return nil
}
