// Package pipeline runs the full build: clean, create, inline styles, serve.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner executes task references.
type Runner interface {
	Run(ctx context.Context, ref domain.InternedString) error
	RunSequential(ctx context.Context, refs []domain.InternedString) error
}

// Orchestrator performs the fixed startup build.
type Orchestrator struct {
	runner   Runner
	preview  ports.PreviewServer
	logger   ports.Logger
	settings domain.Settings
	create   []domain.InternedString
}

// NewOrchestrator creates an Orchestrator for the given creation sequence.
func NewOrchestrator(
	runner Runner,
	preview ports.PreviewServer,
	logger ports.Logger,
	settings domain.Settings,
	create []domain.InternedString,
) *Orchestrator {
	return &Orchestrator{
		runner:   runner,
		preview:  preview,
		logger:   logger,
		settings: settings,
		create:   create,
	}
}

// Build cleans the output root when configured, runs the creation sequence
// and the css inlining step. The first failure aborts the remaining steps.
func (o *Orchestrator) Build(ctx context.Context) error {
	if o.settings.CleanOnStart {
		if err := o.Clean(); err != nil {
			return err
		}
	}

	o.logger.Info(fmt.Sprintf("building %s into %s", o.settings.Source, o.settings.Output))
	if err := o.runner.RunSequential(ctx, o.create); err != nil {
		return err
	}

	if o.settings.Inline.Enabled() {
		if err := o.runner.Run(ctx, domain.NewInternedString(domain.InlineTaskName)); err != nil {
			return err
		}
	}
	return nil
}

// Start runs Build, then starts the preview session and notifies connected clients.
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.Build(ctx); err != nil {
		return err
	}
	if err := o.preview.Start(ctx, o.settings.OutputPath()); err != nil {
		return err
	}
	o.logger.Info("serving " + o.settings.Output + " at http://" + o.preview.Addr())
	o.preview.NotifyReload()
	return nil
}

// Clean removes the output root. A missing output root is not an error.
func (o *Orchestrator) Clean() error {
	if err := o.settings.Validate(); err != nil {
		return err
	}
	out := o.settings.OutputPath()
	if _, err := os.Stat(out); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	o.logger.Info("cleaning " + o.settings.Output)
	if err := os.RemoveAll(out); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCleanFailed, err.Error()), "path", out)
	}
	return nil
}
