package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func transformNames(p *domain.Pipeline) []string {
	out := make([]string, len(p.Transforms))
	for i, t := range p.Transforms {
		out[i] = t.Name.String()
	}
	return out
}

func findTransform(t *testing.T, p *domain.Pipeline, name string) domain.Transform {
	t.Helper()
	for _, tr := range p.Transforms {
		if tr.Name.String() == name {
			return tr
		}
	}
	t.Fatalf("transform %q not found", name)
	return domain.Transform{}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(config.PortEnv, "")
	dir := t.TempDir()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info("no kiln.yaml found, using the default pipeline")

	p, err := config.NewLoader(logger).Load(dir)
	require.NoError(t, err)

	s := p.Settings
	assert.True(t, s.CleanOnStart)
	assert.Equal(t, dir, s.Root)
	assert.Equal(t, "src", s.Source)
	assert.Equal(t, "dist", s.Output)
	assert.Empty(t, s.Version)
	assert.Equal(t, domain.InlineSettings{Stylesheet: "dist/css/main.min.css", Marker: "<style amp-custom>"}, s.Inline)
	assert.Equal(t, domain.PreviewSettings{Host: "localhost", Port: 3000}, s.Preview)

	assert.Equal(t, []string{"html", "svg", "images", "css", "inject-css"}, transformNames(p))
	assert.Equal(t, domain.NewPathSet("src/**/*.{html,tmpl,md}", "!src/templates/**", "!src/includes/**"),
		findTransform(t, p, "html").Input)
	css := findTransform(t, p, "css")
	assert.Equal(t, "style", css.Kind)
	assert.Equal(t, "dist/css", css.Output)
	assert.Equal(t, "sass --no-source-map {in} {out}", css.Option("compiler", ""))

	require.Len(t, p.Composites, 2)
	assert.Equal(t, "watch:css", p.Composites[1].Name.String())
	assert.Equal(t, domain.ModeSequential, p.Composites[1].Mode)
	assert.Equal(t, []domain.InternedString{
		domain.NewInternedString("css"), domain.NewInternedString("inject-css"),
	}, p.Composites[1].Members)

	assert.Equal(t, []domain.InternedString{
		domain.NewInternedString("html"),
		domain.NewInternedString("svg"),
		domain.NewInternedString("images"),
		domain.NewInternedString("css"),
	}, p.Create)

	require.Len(t, p.Watches, 4)
	assert.Equal(t, "watch:html", p.Watches[0].Reaction.String())
	assert.Equal(t, "watch:css", p.Watches[3].Reaction.String())
	assert.True(t, p.Watches[3].Paths.Match("src/scss/partials/_vars.scss"))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(config.PortEnv, "")
	path := writeConfig(t, `
version: "1"
settings:
  clean: false
  output: public
  version: auto
  preview:
    port: 8080
  debounce: 250ms
transforms:
  css:
    kind: style
    input: ["src/css/*.css"]
    output: public/css
  js:
    kind: script
    input: ["src/js/**/*.js"]
    output: public/js
    options:
      bundle: app.js
composites:
  build:all:
    mode: parallel
    tasks: [css, js]
create: [html, build:all]
watch:
  - paths: ["src/js/**/*.js"]
    run: js
    debounce: 50ms
`)

	p, err := config.NewLoader(nil).Load(path)
	require.NoError(t, err)

	s := p.Settings
	assert.False(t, s.CleanOnStart)
	assert.Equal(t, "public", s.Output)
	assert.Equal(t, domain.VersionAuto, s.Version)
	assert.Equal(t, 8080, s.Preview.Port)
	assert.Equal(t, "localhost", s.Preview.Host)
	assert.Equal(t, 250*time.Millisecond, s.Debounce)
	assert.Equal(t, "public/css/main.min.css", s.Inline.Stylesheet)

	assert.Equal(t, []string{"html", "svg", "images", "css", "inject-css", "js"}, transformNames(p))
	assert.Equal(t, "public", findTransform(t, p, "html").Output)
	css := findTransform(t, p, "css")
	assert.Equal(t, domain.NewPathSet("src/css/*.css"), css.Input)
	assert.Empty(t, css.Option("compiler", ""))
	js := findTransform(t, p, "js")
	assert.Equal(t, "app.js", js.Option("bundle", ""))

	require.Len(t, p.Composites, 3)
	assert.Equal(t, domain.ModeParallel, p.Composites[2].Mode)

	assert.Equal(t, []domain.InternedString{
		domain.NewInternedString("html"), domain.NewInternedString("build:all"),
	}, p.Create)

	require.Len(t, p.Watches, 1)
	assert.Equal(t, 50*time.Millisecond, p.Watches[0].Debounce)
	assert.Equal(t, "js", p.Watches[0].Reaction.String())
}

func TestLoad_WithoutDefaults(t *testing.T) {
	t.Setenv(config.PortEnv, "")
	path := writeConfig(t, `
defaults: false
transforms:
  fonts:
    kind: copy
    input: ["assets/fonts/**"]
create: [fonts]
`)

	p, err := config.NewLoader(nil).Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"fonts"}, transformNames(p))
	assert.Equal(t, "dist", p.Transforms[0].Output)
	assert.Empty(t, p.Composites)
	assert.Empty(t, p.Watches)
	assert.False(t, p.Settings.Inline.Enabled())
}

func TestLoad_DisableInline(t *testing.T) {
	t.Setenv(config.PortEnv, "")
	path := writeConfig(t, `
settings:
  inline:
    stylesheet: ""
`)

	p, err := config.NewLoader(nil).Load(path)
	require.NoError(t, err)
	assert.False(t, p.Settings.Inline.Enabled())
}

func TestLoad_PortFromEnvironment(t *testing.T) {
	t.Setenv(config.PortEnv, "4000")
	p, err := config.NewLoader(nil).Load(writeConfig(t, "settings: {preview: {port: 8080}}"))
	require.NoError(t, err)
	assert.Equal(t, 4000, p.Settings.Preview.Port)

	t.Setenv(config.PortEnv, "http")
	_, err = config.NewLoader(nil).Load(writeConfig(t, ""))
	require.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "malformed yaml",
			content: "transforms: [",
			want:    domain.ErrConfigParseFailed,
		},
		{
			name:    "transforms not a mapping",
			content: "transforms: [a, b]",
			want:    domain.ErrConfigParseFailed,
		},
		{
			name:    "output escapes root",
			content: "settings: {output: ../out}",
			want:    domain.ErrInvalidSettings,
		},
		{
			name:    "missing kind",
			content: "transforms: {x: {input: [src/*]}}",
			want:    domain.ErrUnknownTransformKind,
		},
		{
			name:    "empty input",
			content: "transforms: {x: {kind: copy}}",
			want:    domain.ErrEmptyPathSet,
		},
		{
			name:    "malformed glob",
			content: "transforms: {x: {kind: copy, input: [\"src/[\"]}}",
			want:    domain.ErrInvalidPattern,
		},
		{
			name:    "invalid task name",
			content: "transforms: {\"bad name\": {kind: copy, input: [src/*]}}",
			want:    domain.ErrInvalidTaskName,
		},
		{
			name:    "invalid mode",
			content: "composites: {all: {mode: random, tasks: [html]}}",
			want:    domain.ErrInvalidMode,
		},
		{
			name:    "name clash",
			content: "composites: {html: {tasks: [css]}}",
			want:    domain.ErrDuplicateTask,
		},
		{
			name:    "watch without reaction",
			content: "watch: [{paths: [src/**]}]",
			want:    domain.ErrUnknownTask,
		},
		{
			name:    "watch without paths",
			content: "watch: [{run: html}]",
			want:    domain.ErrEmptyPathSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.PortEnv, "")
			_, err := config.NewLoader(nil).Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_Unreadable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file is expected cannot be read.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, domain.ConfigFileName, domain.ConfigFileName), 0o750))

	_, err := config.NewLoader(nil).Load(filepath.Join(dir, domain.ConfigFileName))
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}
