// Package config loads the pipeline description from kiln.yaml.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// PortEnv overrides the preview port.
const PortEnv = "KILN_PORT"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a Loader. logger may be nil.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration at path, or at path/kiln.yaml when path is a directory.
// A missing file yields the default pipeline rooted at the file's directory.
func (l *Loader) Load(path string) (*domain.Pipeline, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, domain.ConfigFileName)
	}

	var file Kilnfile
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if l.logger != nil {
			l.logger.Info("no " + filepath.Base(path) + " found, using the default pipeline")
		}
	case err != nil:
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
		}
	}

	return Build(filepath.Dir(path), file)
}

// Build merges file over the built-in defaults and validates the result.
func Build(root string, file Kilnfile) (*domain.Pipeline, error) {
	settings, err := buildSettings(root, file)
	if err != nil {
		return nil, err
	}

	useDefaults := file.Defaults == nil || *file.Defaults
	transforms := orderedMap[TransformDTO]{values: map[string]TransformDTO{}}
	composites := orderedMap[CompositeDTO]{values: map[string]CompositeDTO{}}
	create := file.Create
	watches := file.Watch
	if useDefaults {
		transforms = defaultTransforms(settings)
		composites = defaultComposites()
		if create == nil {
			create = defaultCreate()
		}
		if watches == nil {
			watches = defaultWatches(settings)
		}
	}
	for _, name := range file.Transforms.keys {
		transforms.set(name, file.Transforms.values[name])
	}
	for _, name := range file.Composites.keys {
		composites.set(name, file.Composites.values[name])
	}

	p := &domain.Pipeline{Settings: settings}
	if err := transforms.each(func(name string, dto TransformDTO) error {
		if _, clash := composites.values[name]; clash {
			return zerr.With(zerr.Wrap(domain.ErrDuplicateTask, "name used by a transform and a composite"), "task", name)
		}
		t, err := buildTransform(settings, name, dto)
		if err != nil {
			return err
		}
		p.Transforms = append(p.Transforms, t)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := composites.each(func(name string, dto CompositeDTO) error {
		c, err := buildComposite(name, dto)
		if err != nil {
			return err
		}
		p.Composites = append(p.Composites, c)
		return nil
	}); err != nil {
		return nil, err
	}

	for _, name := range create {
		p.Create = append(p.Create, domain.NewInternedString(name))
	}

	for i, dto := range watches {
		w, err := buildWatch(dto)
		if err != nil {
			return nil, zerr.With(err, "watch", i)
		}
		p.Watches = append(p.Watches, w)
	}
	return p, nil
}

func buildSettings(root string, file Kilnfile) (domain.Settings, error) {
	s := defaultSettings(root)
	dto := file.Settings

	if dto.Clean != nil {
		s.CleanOnStart = *dto.Clean
	}
	if dto.Source != "" {
		s.Source = filepath.ToSlash(filepath.Clean(dto.Source))
	}
	if dto.Output != "" {
		s.Output = filepath.ToSlash(filepath.Clean(dto.Output))
	}
	if dto.Version != nil {
		s.Version = *dto.Version
	}
	if dto.Preview.Host != "" {
		s.Preview.Host = dto.Preview.Host
	}
	if dto.Preview.Port != 0 {
		s.Preview.Port = dto.Preview.Port
	}
	if dto.Debounce < 0 {
		return s, zerr.With(zerr.Wrap(domain.ErrInvalidSettings, "debounce must not be negative"), "debounce", dto.Debounce.String())
	}
	s.Debounce = dto.Debounce

	if file.Defaults == nil || *file.Defaults {
		s.Inline = domain.InlineSettings{Stylesheet: defaultStylesheet(s), Marker: domain.DefaultInlineMarker}
	}
	if dto.Inline != nil {
		if dto.Inline.Stylesheet != nil {
			s.Inline.Stylesheet = *dto.Inline.Stylesheet
		}
		if dto.Inline.Marker != "" {
			s.Inline.Marker = dto.Inline.Marker
		}
		if s.Inline.Marker == "" {
			s.Inline.Marker = domain.DefaultInlineMarker
		}
	}

	if v, ok := os.LookupEnv(PortEnv); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return s, zerr.With(zerr.Wrap(domain.ErrInvalidSettings, "invalid "+PortEnv), "value", v)
		}
		s.Preview.Port = port
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func buildTransform(s domain.Settings, name string, dto TransformDTO) (domain.Transform, error) {
	if err := domain.ValidateTaskName(name); err != nil {
		return domain.Transform{}, err
	}
	if dto.Kind == "" {
		return domain.Transform{}, zerr.With(zerr.Wrap(domain.ErrUnknownTransformKind, "transform has no kind"), "task", name)
	}
	input := domain.NewPathSet(dto.Input...)
	if err := input.Validate(); err != nil {
		return domain.Transform{}, zerr.With(err, "task", name)
	}
	output := dto.Output
	if output == "" {
		output = s.Output
	}
	return domain.Transform{
		Name:    domain.NewInternedString(name),
		Kind:    dto.Kind,
		Input:   input,
		Output:  filepath.ToSlash(filepath.Clean(output)),
		Options: dto.Options,
	}, nil
}

func buildComposite(name string, dto CompositeDTO) (domain.CompositeTask, error) {
	if err := domain.ValidateTaskName(name); err != nil {
		return domain.CompositeTask{}, err
	}
	mode := domain.Mode(dto.Mode)
	if dto.Mode == "" {
		mode = domain.ModeSequential
	}
	if !mode.Valid() {
		return domain.CompositeTask{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidMode, "invalid composite"),
			"task", name), "mode", dto.Mode)
	}
	members := make([]domain.InternedString, len(dto.Tasks))
	for i, m := range dto.Tasks {
		members[i] = domain.NewInternedString(m)
	}
	return domain.CompositeTask{Name: domain.NewInternedString(name), Members: members, Mode: mode}, nil
}

func buildWatch(dto WatchDTO) (domain.WatchBinding, error) {
	paths := domain.NewPathSet(dto.Paths...)
	if err := paths.Validate(); err != nil {
		return domain.WatchBinding{}, err
	}
	if dto.Run == "" {
		return domain.WatchBinding{}, zerr.Wrap(domain.ErrUnknownTask, "watch binding has no reaction")
	}
	if dto.Debounce < 0 {
		return domain.WatchBinding{}, zerr.With(zerr.Wrap(domain.ErrInvalidSettings, "debounce must not be negative"),
			"debounce", dto.Debounce.String())
	}
	return domain.WatchBinding{
		Paths:    paths,
		Reaction: domain.NewInternedString(dto.Run),
		Debounce: dto.Debounce,
	}, nil
}
