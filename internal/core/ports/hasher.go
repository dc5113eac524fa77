package ports

// Hasher defines the interface for computing content hashes.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashFiles returns a stable hex digest over the contents of the given files.
	// Order of paths does not affect the result.
	HashFiles(paths []string) (string, error)
}
