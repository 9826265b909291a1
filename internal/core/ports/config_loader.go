package ports

import "go.trai.ch/knit/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found at or above cwd.
	// A missing config file yields the defaults rooted at cwd.
	Load(cwd string) (*domain.Config, error)

	// DiscoverRoot walks up from cwd to find the directory containing knit.yaml.
	DiscoverRoot(cwd string) (string, error)
}
