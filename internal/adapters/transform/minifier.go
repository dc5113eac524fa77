package transform

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
	"go.trai.ch/zerr"
)

// Media types understood by the shared minifier.
const (
	MediaCSS  = "text/css"
	MediaJS   = "application/javascript"
	MediaSVG  = "image/svg+xml"
	MediaHTML = "text/html"
)

// NewMinifier returns a minifier for stylesheets, scripts, SVG and HTML.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(MediaCSS, css.Minify)
	m.AddFunc(MediaSVG, svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.Add(MediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}

func minifyBytes(m *minify.M, media, file string, data []byte) ([]byte, error) {
	out, err := m.Bytes(media, data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to minify"), "file", file)
	}
	return out, nil
}
