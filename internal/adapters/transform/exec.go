package transform

import (
	"context"

	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Exec runs an external command once per input file.
//
// Options:
//   - cmd: command template with {in} and {out} placeholders. Required.
//   - ext: replaces the extension of the output file, e.g. ".webp".
type Exec struct {
	executor ports.Executor
}

// NewExec creates the exec transform.
func NewExec(executor ports.Executor) *Exec {
	return &Exec{executor: executor}
}

// Apply runs the command for every input, in order, stopping at the first failure.
func (e *Exec) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	cmd := req.Option("cmd", "")
	if cmd == "" {
		return nil, zerr.With(zerr.New("exec transform needs the cmd option"), "task", req.Name)
	}
	ext := req.Option("ext", "")

	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		out := target(req, file, ext)
		if err := runTool(ctx, e.executor, req, cmd, abs(req.Root, file), abs(req.Root, out)); err != nil {
			return produced, zerr.With(err, "file", file)
		}
		produced = append(produced, out)
	}
	return produced, nil
}
