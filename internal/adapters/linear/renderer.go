// Package linear provides line-oriented progress renderers for terminals and CI logs.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer by printing chronological, task-prefixed lines.
//
// In verbose mode (CI) every start and every output line is printed as it arrives.
// In compact mode (interactive terminals) only completions are printed, and the
// output of a task is shown only when it fails.
type Renderer struct {
	stdout  io.Writer
	stderr  io.Writer
	compact bool

	badge   lipgloss.Style
	faint   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style

	mu      sync.Mutex
	tasks   map[string]*taskState
	pending map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	startTime time.Time
	// lines holds complete output lines in compact mode until the task ends.
	lines []string
}

// NewRenderer creates a verbose renderer for CI logs using ANSI colours.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	return newRenderer(stdout, stderr, output.ColorProfileANSI, false)
}

// NewCompactRenderer creates a compact renderer for interactive terminals.
func NewCompactRenderer(stdout, stderr io.Writer) *Renderer {
	return newRenderer(stdout, stderr, output.ColorProfile, true)
}

func newRenderer(stdout, stderr io.Writer, profile func() termenv.Profile, compact bool) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	lr := lipgloss.NewRenderer(stderr)
	lr.SetColorProfile(profile())

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		compact: compact,
		badge:   lr.NewStyle().Foreground(style.Ember).Bold(true),
		faint:   lr.NewStyle().Foreground(style.Slate),
		success: lr.NewStyle().Foreground(style.Green),
		failure: lr.NewStyle().Foreground(style.Red),
		tasks:   make(map[string]*taskState),
		pending: make(map[string]*bytes.Buffer),
	}
}

// Start is a no-op; the renderer writes synchronously.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes partial lines of tasks that never completed.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.pending {
		r.flushPartialLocked(spanID)
	}
	return nil
}

// OnPlanEmit prints the planned tasks.
func (r *Renderer) OnPlanEmit(tasks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(tasks) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %d task(s): %s\n",
		r.badge.Render("Running"), len(tasks), strings.Join(tasks, ", "))
}

// OnTaskStart records the task and, in verbose mode, prints a start line.
func (r *Renderer) OnTaskStart(spanID, _, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{name: name, startTime: startTime}
	r.pending[spanID] = new(bytes.Buffer)

	if !r.compact {
		_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.prefix(name), r.faint.Render("started"))
	}
}

// OnTaskLog splits data into lines and prints complete ones with the task prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[spanID]; !ok {
		return
	}

	buf := r.pending[spanID]
	buf.Write(data)
	for {
		idx := bytes.IndexByte(buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(buf.Next(idx + 1))
		r.lineLocked(spanID, line)
	}
}

// OnTaskComplete prints the outcome and the elapsed time.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	r.flushPartialLocked(spanID)

	elapsed := endTime.Sub(task.startTime).Round(time.Millisecond)
	if err != nil {
		for _, line := range task.lines {
			r.printLineLocked(task.name, line)
		}
		_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n",
			r.prefix(task.name), r.failure.Render(style.Cross), elapsed, err)
	} else {
		_, _ = fmt.Fprintf(r.stderr, "%s %s done in %v\n",
			r.prefix(task.name), r.success.Render(style.Check), elapsed)
	}

	delete(r.tasks, spanID)
	delete(r.pending, spanID)
}

func (r *Renderer) prefix(name string) string {
	return r.badge.Render("[" + name + "]")
}

// lineLocked prints a line in verbose mode or holds it in compact mode.
// Must be called with r.mu held.
func (r *Renderer) lineLocked(spanID, line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}

	task := r.tasks[spanID]
	if r.compact {
		task.lines = append(task.lines, line)
		return
	}
	r.printLineLocked(task.name, line)
}

// flushPartialLocked treats a trailing partial line as complete.
// Must be called with r.mu held.
func (r *Renderer) flushPartialLocked(spanID string) {
	buf, ok := r.pending[spanID]
	if !ok || buf.Len() == 0 {
		return
	}
	line := buf.String()
	buf.Reset()
	r.lineLocked(spanID, line)
}

func (r *Renderer) printLineLocked(name, line string) {
	_, _ = fmt.Fprintf(r.stdout, "%s %s\n", r.prefix(name), line)
}
