// Package ports defines the core interfaces for the application.
package ports

import "io/fs"

// FileReader abstracts filesystem access for the graph builder.
//
//go:generate mockgen -source=file_reader.go -destination=mocks/mock_file_reader.go -package=mocks
type FileReader interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
}
