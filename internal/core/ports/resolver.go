package ports

import "go.trai.ch/kiln/internal/core/domain"

// InputResolver defines the interface for resolving input files.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs returns every file under root selected by set.
	// Paths are slash-separated, relative to root, sorted and de-duplicated.
	ResolveInputs(set domain.PathSet, root string) ([]string, error)
}
