package transform

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const styleClose = "</style>"

// Inline copies a compiled stylesheet into the inline style region of every
// markup file, replacing whatever the region held. Files are rewritten in place.
//
// Options:
//   - stylesheet: the artifact to inline, relative to the project root.
//   - marker: opening tag of the region.
//
// Both default to the inline build settings.
type Inline struct{}

// Apply rewrites every input file.
func (Inline) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	stylesheet := req.Option("stylesheet", req.Settings.Inline.Stylesheet)
	marker := req.Option("marker", req.Settings.Inline.Marker)
	if marker == "" {
		marker = domain.DefaultInlineMarker
	}

	css, err := os.ReadFile(abs(req.Root, stylesheet))
	if err != nil {
		msg := domain.ErrMissingArtifact.Error()
		if !errors.Is(err, fs.ErrNotExist) {
			msg = err.Error()
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrMissingArtifact, msg), "path", stylesheet)
	}

	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return produced, err
		}
		doc, err := readFile(req.Root, file)
		if err != nil {
			return produced, err
		}
		doc, err = inlineStyle(doc, []byte(marker), css)
		if err != nil {
			return produced, zerr.With(err, "file", file)
		}
		if err := writeFile(req.Root, file, doc); err != nil {
			return produced, err
		}
		produced = append(produced, file)
	}
	return produced, nil
}

// inlineStyle replaces everything between marker and the first closing style
// tag after it with css.
func inlineStyle(doc, marker, css []byte) ([]byte, error) {
	start := bytes.Index(doc, marker)
	if start < 0 {
		return nil, zerr.Wrap(domain.ErrMissingInlineMarker, "no inline style region")
	}
	start += len(marker)
	end := bytes.Index(doc[start:], []byte(styleClose))
	if end < 0 {
		return nil, zerr.Wrap(domain.ErrMissingInlineMarker, "inline style region is not closed")
	}
	end += start

	out := make([]byte, 0, len(doc)-(end-start)+len(css))
	out = append(out, doc[:start]...)
	out = append(out, css...)
	return append(out, doc[end:]...), nil
}
