package transform

import (
	"context"

	"go.trai.ch/kiln/internal/core/ports"
)

// Copy copies files verbatim.
type Copy struct{}

// Apply copies every input into the output directory.
func (Copy) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		data, err := readFile(req.Root, file)
		if err != nil {
			return produced, err
		}
		out := target(req, file, "")
		if err := writeFile(req.Root, out, data); err != nil {
			return produced, err
		}
		produced = append(produced, out)
	}
	return produced, nil
}
