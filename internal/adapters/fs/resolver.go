package fs

import (
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver resolves path sets by walking the static base of every inclusion pattern.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs returns the files under root selected by set, sorted and de-duplicated.
// Zero matches is not an error.
func (r *Resolver) ResolveInputs(set domain.PathSet, root string) ([]string, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string
	for _, base := range set.Bases() {
		dir := filepath.Join(root, filepath.FromSlash(base))
		for path := range r.walker.WalkFiles(dir) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "path", path)
			}
			rel = filepath.ToSlash(rel)
			if seen[rel] || !set.Match(rel) {
				continue
			}
			seen[rel] = true
			result = append(result, rel)
		}
	}

	slices.Sort(result)
	return result, nil
}
