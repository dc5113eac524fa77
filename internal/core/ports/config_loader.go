package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given path and returns the pipeline.
	// A missing file yields the built-in default pipeline rooted at the file's directory.
	Load(path string) (*domain.Pipeline, error)
}
