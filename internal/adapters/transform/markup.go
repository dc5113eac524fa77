package transform

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	defaultPartials = "templates,includes"
	defaultLayout   = "layout"
	partialPattern  = "**/*.{html,tmpl,gohtml}"
	frontMatterSep  = "---"
)

// Page is the data every markup template is executed with.
type Page struct {
	// Path is the output file, relative to the output directory.
	Path string
	// Title comes from the front matter of Markdown pages.
	Title string
	// Meta holds the remaining front matter.
	Meta map[string]any
	// Content is the rendered Markdown body. Empty for template pages.
	Content template.HTML
	// Version is the cache-busting token, if enabled.
	Version string
}

// Markup renders html/template pages and Markdown pages to HTML.
//
// Options:
//   - partials: comma-separated directories below the source directory whose
//     templates are shared by every page (default "templates,includes").
//   - layout: template that wraps Markdown pages (default "layout").
type Markup struct {
	hasher ports.Hasher
	md     goldmark.Markdown
}

// NewMarkup creates the markup transform.
func NewMarkup(hasher ports.Hasher) *Markup {
	return &Markup{hasher: hasher, md: goldmark.New()}
}

// Apply renders every input page to <output>/<name>.html.
func (m *Markup) Apply(ctx context.Context, req ports.TransformRequest) ([]string, error) {
	token, err := versionToken(m.hasher, req.Settings)
	if err != nil {
		return nil, err
	}

	base, err := m.partials(req, token)
	if err != nil {
		return nil, err
	}

	produced := make([]string, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return produced, err
		}

		out := target(req, file, ".html")
		page := Page{
			Path:    strings.TrimPrefix(out, path.Clean(req.Output)+"/"),
			Version: token,
		}

		src, err := readFile(req.Root, file)
		if err != nil {
			return produced, err
		}

		var rendered []byte
		if path.Ext(file) == ".md" {
			rendered, err = m.renderMarkdown(base, req, file, src, page)
		} else {
			rendered, err = renderTemplate(base, file, src, page)
		}
		if err != nil {
			return produced, err
		}

		if err := writeFile(req.Root, out, addVersion(rendered, token)); err != nil {
			return produced, err
		}
		produced = append(produced, out)
	}
	return produced, nil
}

// partials parses the shared templates. Each is named by its path below the source directory.
func (m *Markup) partials(req ports.TransformRequest, token string) (*template.Template, error) {
	base := template.New("").Funcs(template.FuncMap{
		"version": func() string { return token },
	})

	srcDir := req.Settings.SourcePath()
	fsys := os.DirFS(srcDir)
	for _, dir := range strings.Split(req.Option("partials", defaultPartials), ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		matches, err := doublestar.Glob(fsys, path.Join(dir, partialPattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list partials"), "dir", dir)
		}
		for _, rel := range matches {
			data, err := os.ReadFile(abs(srcDir, rel))
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to read partial"), "path", rel)
			}
			if _, err := base.New(rel).Parse(string(data)); err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to parse partial"), "path", rel)
			}
		}
	}
	return base, nil
}

func renderTemplate(base *template.Template, file string, src []byte, page Page) ([]byte, error) {
	t, err := base.Clone()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to clone templates")
	}
	if _, err := t.New(file).Parse(string(src)); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse template"), "file", file)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, file, page); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to render template"), "file", file)
	}
	return buf.Bytes(), nil
}

func (m *Markup) renderMarkdown(base *template.Template, req ports.TransformRequest, file string, src []byte, page Page) ([]byte, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, zerr.With(err, "file", file)
	}

	var content bytes.Buffer
	if err := m.md.Convert(body, &content); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to render markdown"), "file", file)
	}
	//nolint:gosec // Markdown sources belong to the project
	page.Content = template.HTML(content.String())
	if title, ok := meta["title"].(string); ok {
		page.Title = title
	}
	page.Meta = meta

	layout := req.Option("layout", defaultLayout)
	if l, ok := meta["layout"].(string); ok && l != "" {
		layout = l
	}
	if base.Lookup(layout) == nil {
		return content.Bytes(), nil
	}

	// Executing marks a template set as used; later pages still need to clone it.
	t, err := base.Clone()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to clone templates")
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, page); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, "failed to render layout"), "file", file), "layout", layout)
	}
	return buf.Bytes(), nil
}

// splitFrontMatter separates a leading YAML block delimited by "---" lines from the body.
func splitFrontMatter(src []byte) (map[string]any, []byte, error) {
	meta := map[string]any{}
	text := string(src)
	if !strings.HasPrefix(text, frontMatterSep+"\n") && !strings.HasPrefix(text, frontMatterSep+"\r\n") {
		return meta, src, nil
	}

	rest := text[strings.IndexByte(text, '\n')+1:]
	end := strings.Index(rest, "\n"+frontMatterSep)
	if end < 0 {
		return meta, src, nil
	}
	block := rest[:end]
	body := rest[end+1+len(frontMatterSep):]
	body = strings.TrimPrefix(strings.TrimPrefix(body, "\r"), "\n")

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return nil, nil, zerr.Wrap(err, "failed to parse front matter")
	}
	return meta, []byte(body), nil
}
