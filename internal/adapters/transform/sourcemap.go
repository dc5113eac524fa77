package transform

import (
	"encoding/json"
	"path"
	"path/filepath"

	"go.trai.ch/zerr"
)

// sourceMap is a version 3 source map that records the sources of a minified file.
// Mappings are left empty: minification discards positions.
type sourceMap struct {
	Version  int      `json:"version"`
	File     string   `json:"file"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

// newSourceMap builds the map for out, with sources relative to its directory.
// All paths are slash-separated and relative to the project root.
func newSourceMap(out string, sources []string) ([]byte, error) {
	dir := path.Dir(out)
	rel := make([]string, len(sources))
	for i, src := range sources {
		r, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(src))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to relate source map source"), "source", src)
		}
		rel[i] = filepath.ToSlash(r)
	}

	data, err := json.Marshal(sourceMap{
		Version:  3,
		File:     path.Base(out),
		Sources:  rel,
		Names:    []string{},
		Mappings: "",
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode source map")
	}
	return data, nil
}
