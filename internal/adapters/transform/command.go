package transform

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// expandCommand splits a command template on whitespace and substitutes the
// {in} and {out} placeholders. No shell is involved.
func expandCommand(tmpl, in, out string) []string {
	fields := strings.Fields(tmpl)
	for i, f := range fields {
		f = strings.ReplaceAll(f, "{in}", in)
		fields[i] = strings.ReplaceAll(f, "{out}", out)
	}
	return fields
}

// runTool runs a command template for one file, from the project root.
func runTool(ctx context.Context, executor ports.Executor, req ports.TransformRequest, tmpl, in, out string) error {
	if executor == nil {
		return zerr.New("no executor configured")
	}
	if err := os.MkdirAll(filepath.Dir(out), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", out)
	}
	return executor.Execute(ctx, domain.Command{
		Args: expandCommand(tmpl, in, out),
		Dir:  req.Root,
	}, req.Log, req.Log)
}
