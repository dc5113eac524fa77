package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// PrettyHandler is a slog.Handler that produces human-readable, coloured output.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(level)

	return &PrettyHandler{
		out:   output.New(w),
		level: levelVar,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Attribute keys the pretty handler renders in place rather than as key=value.
const (
	// TaskKey names the task a record belongs to. It prefixes the message.
	TaskKey = "task"
	// FileKey names the file a record is about. It follows the message in parentheses.
	FileKey = "file"
)

// Handle writes one line: an optional level icon, the task, the message, the file
// and any remaining attributes.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	color := termenv.RGBColor(string(style.Slate))
	var line strings.Builder
	switch {
	case r.Level >= slog.LevelError:
		color = termenv.RGBColor(string(style.Red))
		line.WriteString(style.Cross + " ")
	case r.Level >= slog.LevelWarn:
		color = termenv.RGBColor(string(style.Yellow))
		line.WriteString(style.Warning + " ")
	}

	var task, file string
	rest := make([]string, 0, len(h.attrs)+r.NumAttrs())
	collect := func(attr slog.Attr) bool {
		switch {
		case h.group == "" && attr.Key == TaskKey:
			task = attr.Value.String()
		case h.group == "" && attr.Key == FileKey:
			file = attr.Value.String()
		default:
			rest = append(rest, formatAttr(h.group, attr))
		}
		return true
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	r.Attrs(collect)

	line.WriteString(r.Message)
	if file != "" {
		line.WriteString(" (" + file + ")")
	}
	if len(rest) > 0 {
		line.WriteString(" " + strings.Join(rest, " "))
	}

	out := h.out.String(line.String()).Foreground(color).String()
	if task != "" {
		prefix := h.out.String(task + " " + style.Arrow).Foreground(termenv.RGBColor(string(style.Ember)))
		out = prefix.String() + " " + out
	}
	_, err := h.out.WriteString(out + "\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: newAttrs,
		group: h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{
		out:   h.out,
		level: h.level,
		attrs: h.attrs,
		group: name,
	}
}

// formatAttr renders key=value, prefixing the key with the group if one is set.
func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return key + "=" + attr.Value.String()
}
