package config

import (
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version string `yaml:"version"`
	// Defaults set to false drops the built-in tasks, creation sequence and watches.
	Defaults   *bool                    `yaml:"defaults"`
	Settings   SettingsDTO              `yaml:"settings"`
	Transforms orderedMap[TransformDTO] `yaml:"transforms"`
	Composites orderedMap[CompositeDTO] `yaml:"composites"`
	Create     []string                 `yaml:"create"`
	Watch      []WatchDTO               `yaml:"watch"`
}

// SettingsDTO represents the build settings. Unset fields keep their defaults.
type SettingsDTO struct {
	Clean    *bool         `yaml:"clean"`
	Source   string        `yaml:"source"`
	Output   string        `yaml:"output"`
	Version  *string       `yaml:"version"`
	Inline   *InlineDTO    `yaml:"inline"`
	Preview  PreviewDTO    `yaml:"preview"`
	Debounce time.Duration `yaml:"debounce"`
}

// InlineDTO configures the css inlining step. An empty stylesheet disables it.
type InlineDTO struct {
	Stylesheet *string `yaml:"stylesheet"`
	Marker     string  `yaml:"marker"`
}

// PreviewDTO configures the preview server.
type PreviewDTO struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransformDTO represents a transform definition in the configuration.
type TransformDTO struct {
	Kind    string            `yaml:"kind"`
	Input   []string          `yaml:"input"`
	Output  string            `yaml:"output"`
	Options map[string]string `yaml:"options"`
}

// CompositeDTO represents a composite task definition in the configuration.
type CompositeDTO struct {
	Mode  string   `yaml:"mode"`
	Tasks []string `yaml:"tasks"`
}

// WatchDTO represents a watch binding in the configuration.
type WatchDTO struct {
	Paths    []string      `yaml:"paths"`
	Run      string        `yaml:"run"`
	Debounce time.Duration `yaml:"debounce"`
}

// orderedMap decodes a YAML mapping and remembers the declaration order of its keys.
type orderedMap[T any] struct {
	keys   []string
	values map[string]T
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *orderedMap[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("expected a mapping"), "line", node.Line)
	}
	m.values = make(map[string]T, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if _, dup := m.values[key]; dup {
			return zerr.With(zerr.With(zerr.New("duplicate key"), "key", key), "line", node.Content[i].Line)
		}
		var v T
		if err := node.Content[i+1].Decode(&v); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid entry"), "key", key)
		}
		m.keys = append(m.keys, key)
		m.values[key] = v
	}
	return nil
}

// set adds or replaces an entry. Replaced entries keep their position.
func (m *orderedMap[T]) set(key string, v T) {
	if m.values == nil {
		m.values = map[string]T{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// each yields the entries in declaration order.
func (m orderedMap[T]) each(fn func(key string, v T) error) error {
	for _, k := range m.keys {
		if err := fn(k, m.values[k]); err != nil {
			return err
		}
	}
	return nil
}
