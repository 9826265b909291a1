// Package cas stores bundle artifacts and the build info describing them.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactStore = (*Store)(nil)

// Store implements ports.ArtifactStore using a file-per-entry strategy.
// Build info is written for inspection only; builds never read it to skip work.
type Store struct {
	now func() time.Time
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Write atomically replaces output with the bundle script and records its build info.
func (s *Store) Write(root, output string, bundle *domain.Bundle, modules []string) error {
	if err := writeAtomic(output, []byte(bundle.Script)); err != nil {
		return zerr.With(errors.Join(domain.ErrArtifactWriteFailed, err), "output", output)
	}

	return s.Put(root, domain.BuildInfo{
		Entry:     bundle.Entry.String(),
		Output:    output,
		Digest:    bundle.Digest(),
		Modules:   modules,
		Timestamp: s.now().UTC(),
	})
}

// Get retrieves the build info for an entry.
func (s *Store) Get(root, entry string) (*domain.BuildInfo, error) {
	filename := s.getFilename(root, entry)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(domain.ErrStoreReadFailed, err)
	}

	var info domain.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Join(domain.ErrStoreUnmarshalFailed, err)
	}

	return &info, nil
}

// Put stores the build info.
func (s *Store) Put(root string, info domain.BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrStoreMarshalFailed, err)
	}

	filename := s.getFilename(root, info.Entry)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return errors.Join(domain.ErrStoreCreateFailed, err)
	}

	if err := writeAtomic(filename, data); err != nil {
		return errors.Join(domain.ErrStoreWriteFailed, err)
	}

	return nil
}

func (s *Store) getFilename(root, entry string) string {
	storeDir := filepath.Join(root, domain.DefaultStorePath())
	return filepath.Join(storeDir, domain.FormatDigest(xxhash.Sum64String(entry))+".json")
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, domain.TempFilePattern(path))
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
