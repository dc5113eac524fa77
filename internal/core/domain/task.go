package domain

import (
	"regexp"
	"time"

	"go.trai.ch/zerr"
)

// Mode is the execution mode of a composite task.
type Mode string

const (
	// ModeSequential runs members one after another, stopping at the first failure.
	ModeSequential Mode = "sequential"
	// ModeParallel runs members concurrently and aggregates every failure.
	ModeParallel Mode = "parallel"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSequential || m == ModeParallel
}

var validTaskNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_:.-]*$`)

// ValidateTaskName checks that a task name is usable as a reference.
func ValidateTaskName(name string) error {
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidTaskName, "task names may contain letters, digits, '_', ':', '.', '-'"),
			"task", name)
	}
	return nil
}

// Transform describes a named file transform.
// The function that performs the work is selected by Kind.
type Transform struct {
	Name    InternedString
	Kind    string
	Input   PathSet
	Output  string
	Options map[string]string
}

// Option returns the named option or fallback when it is unset.
func (t *Transform) Option(key, fallback string) string {
	if v, ok := t.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// CompositeTask groups task references under a single name.
type CompositeTask struct {
	Name    InternedString
	Members []InternedString
	Mode    Mode
}

// WatchBinding maps a watched path set to the task re-run when it changes.
type WatchBinding struct {
	Paths    PathSet
	Reaction InternedString
	Debounce time.Duration
}
