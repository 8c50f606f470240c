package ports

import "go.trai.ch/interpose/internal/core/domain"

// ConfigLoader defines the interface for loading the engine configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration at path. An empty path yields the defaults.
	Load(path string) (*domain.Config, error)
}
