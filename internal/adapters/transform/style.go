package transform

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Style minifies stylesheets into <name><suffix>.css with a source map sidecar.
//
// Options:
//   - compiler: command template that turns a Sass source into CSS, e.g.
//     "sass --no-source-map {in} {out}". Required for .scss and .sass inputs.
//   - suffix: inserted before .css (default ".min").
//   - sourcemap: "false" disables the .map sidecar.
//
// Files whose name starts with "_" are partials and are skipped.
type Style struct {
	executor ports.Executor
	min      *minify.M
}

// NewStyle creates the style transform.
func NewStyle(executor ports.Executor, m *minify.M) *Style {
	return &Style{executor: executor, min: m}
}

// Apply compiles and minifies every stylesheet.
func (s *Style) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	suffix := req.Option("suffix", ".min")
	withMap := req.Option("sourcemap", "true") != "false"

	var produced []string
	for _, file := range req.Files {
		if isPartial(file) {
			continue
		}

		css, err := s.compile(ctx, req, file)
		if err != nil {
			return produced, err
		}
		css, err = minifyBytes(s.min, MediaCSS, file, css)
		if err != nil {
			return produced, err
		}

		out := target(req, file, suffix+".css")
		if withMap {
			css = append(css, "\n/*# sourceMappingURL="+path.Base(out)+".map */"...)
			sm, err := newSourceMap(out, []string{file})
			if err != nil {
				return produced, err
			}
			if err := writeFile(req.Root, out+".map", sm); err != nil {
				return produced, err
			}
		}
		if err := writeFile(req.Root, out, css); err != nil {
			return produced, err
		}
		produced = append(produced, out)
		if withMap {
			produced = append(produced, out+".map")
		}
	}
	return produced, nil
}

// compile returns plain CSS for file, running the configured compiler for Sass sources.
func (s *Style) compile(ctx context.Context, req ports.TransformRequest, file string) ([]byte, error) {
	ext := path.Ext(file)
	if ext != ".scss" && ext != ".sass" {
		return readFile(req.Root, file)
	}

	compiler := req.Option("compiler", "")
	if compiler == "" {
		return nil, zerr.With(zerr.New("sass sources need the compiler option"), "file", file)
	}

	tmp, err := os.MkdirTemp("", "kiln-style-*")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create temporary directory")
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	out := filepath.Join(tmp, strings.TrimSuffix(path.Base(file), ext)+".css")
	if err := runTool(ctx, s.executor, req, compiler, abs(req.Root, file), out); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(out) //nolint:gosec // path is inside our temporary directory
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "compiler produced no output"), "file", file)
	}
	return data, nil
}
