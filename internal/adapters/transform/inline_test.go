package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/transform"
	"go.trai.ch/kiln/internal/core/domain"
)

const ampPage = `<html ⚡><head><style amp-custom>/* stale */</style></head><body><style>p{}</style></body></html>`

var builtPages = domain.NewPathSet("dist/**/*.html")

func TestInline_ReplacesRegion(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dist/css/main.min.css": "body{color:red}\n",
		"dist/index.html":       ampPage,
		"dist/blog/post.html":   ampPage,
	})

	req := newRequest(root, builtPages, "dist", "dist/blog/post.html", "dist/index.html")
	req.Settings.Inline = domain.InlineSettings{
		Stylesheet: "dist/css/main.min.css",
		Marker:     domain.DefaultInlineMarker,
	}

	want := "<html ⚡><head><style amp-custom>body{color:red}\n</style>" +
		`</head><body><style>p{}</style></body></html>`
	for range 2 {
		produced, err := transform.Inline{}.Apply(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"dist/blog/post.html", "dist/index.html"}, produced)
		assert.Equal(t, want, readOut(t, root, "dist/index.html"))
		assert.Equal(t, want, readOut(t, root, "dist/blog/post.html"))
	}
}

func TestInline_CopiesStylesheetVerbatim(t *testing.T) {
	root := t.TempDir()
	css := "\n  body{color:red}\n"
	writeTree(t, root, map[string]string{
		"dist/css/main.min.css": css,
		"dist/index.html":       "<style amp-custom>old</style>",
	})

	req := newRequest(root, builtPages, "dist", "dist/index.html")
	req.Settings.Inline = domain.InlineSettings{
		Stylesheet: "dist/css/main.min.css",
		Marker:     domain.DefaultInlineMarker,
	}

	_, err := transform.Inline{}.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "<style amp-custom>"+css+"</style>", readOut(t, root, "dist/index.html"))
}

func TestInline_OptionsOverrideSettings(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dist/other.css":  "a{}",
		"dist/index.html": `<style data-inline>x</style>`,
	})

	req := newRequest(root, builtPages, "dist", "dist/index.html")
	req.Options = map[string]string{"stylesheet": "dist/other.css", "marker": "<style data-inline>"}
	_, err := transform.Inline{}.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `<style data-inline>a{}</style>`, readOut(t, root, "dist/index.html"))
}

func TestInline_MissingArtifact(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"dist/index.html": ampPage})

	req := newRequest(root, builtPages, "dist", "dist/index.html")
	req.Settings.Inline = domain.InlineSettings{Stylesheet: "dist/css/main.min.css", Marker: domain.DefaultInlineMarker}
	_, err := transform.Inline{}.Apply(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrMissingArtifact)
	assert.Equal(t, ampPage, readOut(t, root, "dist/index.html"))
}

func TestInline_MissingMarker(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"dist/css/main.min.css": "a{}",
		"dist/index.html":       "<html><head></head></html>",
	})

	req := newRequest(root, builtPages, "dist", "dist/index.html")
	req.Settings.Inline = domain.InlineSettings{Stylesheet: "dist/css/main.min.css", Marker: domain.DefaultInlineMarker}
	_, err := transform.Inline{}.Apply(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrMissingInlineMarker)
}

func TestInlineStyle_Unclosed(t *testing.T) {
	_, err := transform.InlineStyleExported([]byte("<style amp-custom>a{}"), []byte("<style amp-custom>"), []byte("b{}"))
	require.ErrorIs(t, err, domain.ErrMissingInlineMarker)
}
