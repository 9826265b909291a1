package domain

import (
	"path/filepath"
	"strings"
)

const (
	// KnitDirName is the name of the internal workspace directory.
	KnitDirName = ".knit"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "knit.yaml"

	// DefaultOutputPath is where bundles are written when neither flags nor config say otherwise.
	DefaultOutputPath = "dist/bundle.js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultKnitPath returns the workspace directory relative to the project root.
func DefaultKnitPath() string {
	return KnitDirName
}

// DefaultStorePath returns the build info store directory relative to the project root.
func DefaultStorePath() string {
	return filepath.Join(KnitDirName, StoreDirName)
}

// TempFilePattern returns the os.CreateTemp pattern for files staged next to
// path before being renamed over it.
func TempFilePattern(path string) string {
	return "." + filepath.Base(path) + ".tmp-*"
}

// IsTempFileOf reports whether candidate was staged by TempFilePattern(path).
func IsTempFileOf(path, candidate string) bool {
	if filepath.Dir(candidate) != filepath.Dir(path) {
		return false
	}
	prefix := strings.TrimSuffix(TempFilePattern(path), "*")
	return strings.HasPrefix(filepath.Base(candidate), prefix)
}
