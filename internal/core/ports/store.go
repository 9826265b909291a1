package ports

import "go.trai.ch/knit/internal/core/domain"

// ArtifactStore persists bundles and the build info describing them.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactStore interface {
	// Write stores the bundle script at output and records its build info under root.
	Write(root, output string, bundle *domain.Bundle, modules []string) error

	// Get retrieves the build info for an entry.
	// Returns nil, nil if not found.
	Get(root, entry string) (*domain.BuildInfo, error)
}
