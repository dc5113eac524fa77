package config

import (
	"path"

	"go.trai.ch/kiln/internal/core/domain"
)

// Names of the built-in tasks.
const (
	TaskHTML      = "html"
	TaskSVG       = "svg"
	TaskImages    = "images"
	TaskCSS       = "css"
	TaskWatchHTML = "watch:html"
	TaskWatchCSS  = "watch:css"
)

// defaultCompiler turns Sass into CSS with the reference Dart Sass CLI.
const defaultCompiler = "sass --no-source-map {in} {out}"

func defaultSettings(root string) domain.Settings {
	return domain.Settings{
		CleanOnStart: true,
		Root:         root,
		Source:       domain.DefaultSourceDir,
		Output:       domain.DefaultOutputDir,
		Preview: domain.PreviewSettings{
			Host: domain.DefaultPreviewHost,
			Port: domain.DefaultPreviewPort,
		},
	}
}

// defaultStylesheet is the compiled stylesheet the inlining step reads.
func defaultStylesheet(s domain.Settings) string {
	return path.Join(s.Output, "css", "main.min.css")
}

// defaultTransforms returns the built-in page, graphics, image and stylesheet
// transforms plus the inlining step, laid out below the configured directories.
func defaultTransforms(s domain.Settings) orderedMap[TransformDTO] {
	src, out := s.Source, s.Output
	m := orderedMap[TransformDTO]{values: map[string]TransformDTO{}}
	m.set(TaskHTML, TransformDTO{
		Kind: "markup",
		Input: []string{
			path.Join(src, "**/*.{html,tmpl,md}"),
			"!" + path.Join(src, "templates/**"),
			"!" + path.Join(src, "includes/**"),
		},
		Output: out,
	})
	m.set(TaskSVG, TransformDTO{
		Kind:   "svg",
		Input:  []string{path.Join(src, "images/**/*.svg")},
		Output: path.Join(out, "images"),
	})
	m.set(TaskImages, TransformDTO{
		Kind:   "images",
		Input:  []string{path.Join(src, "images/**/*.{png,jpg,jpeg}")},
		Output: path.Join(out, "images"),
	})
	m.set(TaskCSS, TransformDTO{
		Kind:    "style",
		Input:   []string{path.Join(src, "scss/*.scss")},
		Output:  path.Join(out, "css"),
		Options: map[string]string{"compiler": defaultCompiler},
	})
	m.set(domain.InlineTaskName, TransformDTO{
		Kind:   "inline-css",
		Input:  []string{path.Join(out, "**/*.html")},
		Output: out,
	})
	return m
}

func defaultComposites() orderedMap[CompositeDTO] {
	m := orderedMap[CompositeDTO]{values: map[string]CompositeDTO{}}
	m.set(TaskWatchHTML, CompositeDTO{
		Mode:  string(domain.ModeSequential),
		Tasks: []string{TaskHTML, domain.InlineTaskName},
	})
	m.set(TaskWatchCSS, CompositeDTO{
		Mode:  string(domain.ModeSequential),
		Tasks: []string{TaskCSS, domain.InlineTaskName},
	})
	return m
}

func defaultCreate() []string {
	return []string{TaskHTML, TaskSVG, TaskImages, TaskCSS}
}

// defaultWatches re-run each step when its sources change. Page watches include
// the shared templates, and stylesheet watches include partials in subdirectories.
func defaultWatches(s domain.Settings) []WatchDTO {
	src := s.Source
	return []WatchDTO{
		{Paths: []string{path.Join(src, "**/*.{html,tmpl,md}")}, Run: TaskWatchHTML},
		{Paths: []string{path.Join(src, "images/**/*.svg")}, Run: TaskSVG},
		{Paths: []string{path.Join(src, "images/**/*.{png,jpg,jpeg}")}, Run: TaskImages},
		{Paths: []string{path.Join(src, "scss/**/*.scss")}, Run: TaskWatchCSS},
	}
}
