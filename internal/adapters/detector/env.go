// Package detector chooses how progress is rendered for the current environment.
package detector

import (
	"io"
	"os"

	"go.trai.ch/kiln/internal/adapters/linear"
	"go.trai.ch/kiln/internal/core/ports"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto picks a mode from the environment.
	ModeAuto OutputMode = iota
	// ModeCompact prints one line per finished task, for interactive terminals.
	ModeCompact
	// ModeLinear prints every start and output line, for CI logs.
	ModeLinear
)

// String returns the flag spelling of m.
func (m OutputMode) String() string {
	switch m {
	case ModeCompact:
		return "compact"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// DetectEnvironment returns the recommended output mode.
// Output that is not a terminal, or a CI environment, gets the linear renderer.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

// Detect is DetectEnvironment with its inputs made explicit.
func Detect(isTTY bool, ci string) OutputMode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeCompact
}

// ResolveMode applies the user's --output flag to the detected mode.
// userFlag should be one of: "auto", "compact", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "compact":
		return ModeCompact
	case "linear", "ci":
		return ModeLinear
	default:
		return autoDetected
	}
}

// NewRenderer returns the renderer for mode. ModeAuto is detected first.
func NewRenderer(mode OutputMode, stdout, stderr io.Writer) ports.Renderer {
	if mode == ModeAuto {
		mode = DetectEnvironment()
	}
	if mode == ModeCompact {
		return linear.NewCompactRenderer(stdout, stderr)
	}
	return linear.NewRenderer(stdout, stderr)
}
