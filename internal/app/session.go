package app

import (
	"context"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/kiln/internal/engine/registry"
	"go.trai.ch/kiln/internal/engine/sequencer"
	"go.trai.ch/zerr"
)

// session holds the engines of one invocation and the renderer they report to.
type session struct {
	sequencer    *sequencer.Sequencer
	orchestrator *pipeline.Orchestrator
	renderer     ports.Renderer
	provider     *trace.TracerProvider
	logger       ports.Logger
}

func newSession(
	p *domain.Pipeline,
	reg *registry.Registry,
	resolver ports.InputResolver,
	tracer ports.Tracer,
	renderer ports.Renderer,
	provider *trace.TracerProvider,
	metrics ports.MetricsRecorder,
	logger ports.Logger,
	server ports.PreviewServer,
) (*session, error) {
	seq := sequencer.New(reg, resolver, tracer, metrics, p.Settings)

	plan, err := seq.Plan(buildRefs(p)...)
	if err != nil {
		return nil, err
	}

	if err := renderer.Start(context.Background()); err != nil {
		return nil, zerr.Wrap(err, "failed to start renderer")
	}
	tracer.EmitPlan(context.Background(), plan)

	return &session{
		sequencer:    seq,
		orchestrator: pipeline.NewOrchestrator(seq, server, logger, p.Settings, p.Create),
		renderer:     renderer,
		provider:     provider,
		logger:       logger,
	}, nil
}

// close flushes the spans and stops the renderer.
func (s *session) close(ctx context.Context) {
	if err := s.provider.Shutdown(ctx); err != nil {
		s.logger.Error(zerr.Wrap(err, "failed to shut down tracer provider"))
	}
	if err := s.renderer.Stop(); err != nil {
		s.logger.Error(zerr.Wrap(err, "failed to stop renderer"))
	}
}

// buildRefs returns the references a full build runs, in order.
func buildRefs(p *domain.Pipeline) []domain.InternedString {
	refs := append([]domain.InternedString(nil), p.Create...)
	if p.Settings.Inline.Enabled() {
		refs = append(refs, domain.NewInternedString(domain.InlineTaskName))
	}
	return refs
}

// buildRegistry registers every transform with the implementation of its kind and
// every composite, then checks that all references the pipeline will run resolve.
func buildRegistry(p *domain.Pipeline, catalog TransformCatalog) (*registry.Registry, error) {
	reg := registry.New()
	for _, t := range p.Transforms {
		impl, err := catalog.Lookup(t.Kind)
		if err != nil {
			return nil, zerr.With(err, "task", t.Name.String())
		}
		if err := reg.RegisterTransform(t, impl); err != nil {
			return nil, err
		}
	}
	for _, c := range p.Composites {
		if err := reg.RegisterComposite(c); err != nil {
			return nil, err
		}
	}

	refs := buildRefs(p)
	for _, w := range p.Watches {
		refs = append(refs, w.Reaction)
	}
	if err := reg.Validate(refs...); err != nil {
		return nil, err
	}
	return reg, nil
}
