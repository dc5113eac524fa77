package transform

import (
	"context"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/kiln/internal/core/ports"
)

// SVG minifies vector graphics one file at a time.
type SVG struct {
	min *minify.M
}

// NewSVG creates the svg transform.
func NewSVG(m *minify.M) *SVG {
	return &SVG{min: m}
}

// Apply minifies every input into the output directory.
func (s *SVG) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		data, err := readFile(req.Root, file)
		if err != nil {
			return produced, err
		}
		data, err = minifyBytes(s.min, MediaSVG, file, data)
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
