// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// TransformRequest carries everything a transform needs for one application.
type TransformRequest struct {
	// Name is the task name, used for logging and span attributes.
	Name string
	// Root is the absolute project root.
	Root string
	// Input is the path set the files were matched with.
	Input domain.PathSet
	// Files are the matched input files, slash-separated and relative to Root.
	Files []string
	// Output is the output directory, relative to Root.
	Output string
	// Options is the per-task configuration.
	Options map[string]string
	// Settings are the build settings the pipeline was loaded with.
	Settings domain.Settings
	// Log receives the output of external tools. It may be nil.
	Log io.Writer
}

// Option returns the named option or fallback when it is unset.
func (r TransformRequest) Option(key, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Transformer applies a file transform.
//
// Implementations are stateless. Applying the same request to unchanged inputs
// produces the same files.
//
//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks
type Transformer interface {
	// Apply runs the transform and returns the produced files relative to Root.
	Apply(ctx context.Context, req TransformRequest) ([]string, error)
}
