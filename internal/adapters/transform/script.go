package transform

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/kiln/internal/core/ports"
)

const defaultBundle = "main.js"

// Script concatenates every input into one bundle and minifies it.
//
// Options:
//   - bundle: name of the bundle below the output directory (default "main.js").
//     The written file is <bundle>.min.js.
//   - sourcemap: "false" disables the .map sidecar.
type Script struct {
	min *minify.M
}

// NewScript creates the script transform.
func NewScript(m *minify.M) *Script {
	return &Script{min: m}
}

// Apply writes the bundle. No inputs means no bundle.
func (s *Script) Apply(_ context.Context, req ports.TransformRequest) ([]string, error) {
	if len(req.Files) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	for _, file := range req.Files {
		data, err := readFile(req.Root, file)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		// Keeps a trailing expression of one file from running into the next.
		buf.WriteString("\n;\n")
	}

	js, err := minifyBytes(s.min, MediaJS, req.Option("bundle", defaultBundle), buf.Bytes())
	if err != nil {
		return nil, err
	}

	bundle := strings.TrimSuffix(req.Option("bundle", defaultBundle), ".js")
	out := path.Join(path.Clean(req.Output), bundle+".min.js")
	produced := []string{out}

	if req.Option("sourcemap", "true") != "false" {
		js = append(js, "\n//# sourceMappingURL="+path.Base(out)+".map"...)
		sm, err := newSourceMap(out, req.Files)
		if err != nil {
			return nil, err
		}
		if err := writeFile(req.Root, out+".map", sm); err != nil {
			return nil, err
		}
		produced = append(produced, out+".map")
	}

	if err := writeFile(req.Root, out, js); err != nil {
		return nil, err
	}
	return produced, nil
}
