package fs

import (
	"path/filepath"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SpecifierResolver = (*Resolver)(nil)

// Resolver implements ports.SpecifierResolver.
// Specifiers are resolved against the directory of the importing file, never
// against the entry or the working directory, so the same specifier can name
// different files from different importers.
type Resolver struct {
	files      ports.FileReader
	extensions []string
}

// NewResolver creates a Resolver. When extensions is non-empty, a resolved path
// that does not name an existing regular file is retried with each extension
// appended, in order.
func NewResolver(files ports.FileReader, extensions []string) *Resolver {
	return &Resolver{
		files:      files,
		extensions: extensions,
	}
}

// Resolve resolves specifier against the directory of importer.
func (r *Resolver) Resolve(importer, specifier string) (string, error) {
	if specifier == "" {
		err := zerr.With(domain.ErrResolveFailed, "importer", importer)
		return "", zerr.With(err, "specifier", specifier)
	}

	spec := filepath.FromSlash(specifier)
	var candidate string
	if filepath.IsAbs(spec) {
		candidate = filepath.Clean(spec)
	} else {
		candidate = filepath.Join(filepath.Dir(importer), spec)
	}

	if len(r.extensions) == 0 || r.isFile(candidate) {
		return candidate, nil
	}

	for _, ext := range r.extensions {
		if withExt := candidate + ext; r.isFile(withExt) {
			return withExt, nil
		}
	}

	// Let the read report the missing file under the name the importer asked for.
	return candidate, nil
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.files.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
