package domain

import (
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// Settings holds the immutable build settings read once at startup.
type Settings struct {
	// CleanOnStart removes the output root before the first build.
	CleanOnStart bool
	// Root is the project root every path set is relative to.
	Root string
	// Source is the source directory, relative to Root.
	Source string
	// Output is the output root, relative to Root. It is fully disposable.
	Output string
	// Version is the cache-busting token appended to asset references. Empty disables it.
	Version string
	// Inline configures the css inlining post-step. A zero value disables it.
	Inline InlineSettings
	// Preview configures the live preview server.
	Preview PreviewSettings
	// Debounce is the default debounce window for watch bindings.
	Debounce time.Duration
}

// InlineSettings configures the step that copies a stylesheet into every markup file.
type InlineSettings struct {
	// Stylesheet is the compiled stylesheet artifact, relative to Root.
	Stylesheet string
	// Marker is the opening tag of the region that receives the stylesheet.
	Marker string
}

// Enabled reports whether the inlining step is configured.
func (s InlineSettings) Enabled() bool {
	return s.Stylesheet != ""
}

// PreviewSettings configures the live preview server.
type PreviewSettings struct {
	Host string
	Port int
}

// Pipeline is the fully loaded build description.
type Pipeline struct {
	Settings   Settings
	Transforms []Transform
	Composites []CompositeTask
	// Create lists the canonical creation sequence, in order.
	Create []InternedString
	// Watches lists the watch bindings in activation order.
	Watches []WatchBinding
}

// OutputPath returns the absolute output root.
func (s Settings) OutputPath() string {
	return filepath.Join(s.Root, s.Output)
}

// SourcePath returns the absolute source directory.
func (s Settings) SourcePath() string {
	return filepath.Join(s.Root, s.Source)
}

// Validate checks that the output root is a proper subdirectory of Root.
func (s Settings) Validate() error {
	out := filepath.Clean(s.Output)
	if s.Output == "" || out == "." || filepath.IsAbs(out) || out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return zerr.With(zerr.Wrap(ErrInvalidSettings, "output must be a subdirectory of the project root"),
			"output", s.Output)
	}
	if s.Preview.Port < 0 || s.Preview.Port > 65535 {
		return zerr.With(zerr.Wrap(ErrInvalidSettings, "preview port out of range"), "port", s.Preview.Port)
	}
	if s.Inline.Enabled() && s.Inline.Marker == "" {
		return zerr.Wrap(ErrInvalidSettings, "inline stylesheet requires a marker")
	}
	return nil
}
