// Package transform implements the built-in transform kinds.
package transform

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// target maps an input file to its output path, relative to the project root.
// The directory structure below the matching pattern's static base is kept;
// a non-empty ext replaces the file extension.
func target(req ports.TransformRequest, file, ext string) string {
	rel := req.Input.Trim(file)
	if ext != "" {
		rel = strings.TrimSuffix(rel, path.Ext(rel)) + ext
	}
	return path.Join(filepath.ToSlash(req.Output), rel)
}

func abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func readFile(root, rel string) ([]byte, error) {
	data, err := os.ReadFile(abs(root, rel))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", rel)
	}
	return data, nil
}

// writeFile writes data below root, creating parent directories.
func writeFile(root, rel string, data []byte) error {
	p := abs(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", rel)
	}
	if err := os.WriteFile(p, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", rel)
	}
	return nil
}

// isPartial reports whether the file is a Sass-style partial, which is never compiled on its own.
func isPartial(file string) bool {
	return strings.HasPrefix(path.Base(file), "_")
}
