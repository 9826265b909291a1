package domain

import (
	"path/filepath"
	"unique"
)

// ModulePath is an interned, cleaned absolute file path.
// Shared dependencies are referenced from many importers, so every occurrence
// of the same path shares one handle and compares in constant time.
type ModulePath struct {
	h unique.Handle[string]
}

// NewModulePath interns the cleaned form of p.
func NewModulePath(p string) ModulePath {
	return ModulePath{h: unique.Make(filepath.Clean(p))}
}

// String returns the underlying path.
func (p ModulePath) String() string {
	var zero unique.Handle[string]
	if p.h == zero {
		return ""
	}
	return p.h.Value()
}

// IsZero reports whether p was never assigned.
func (p ModulePath) IsZero() bool {
	var zero unique.Handle[string]
	return p.h == zero
}

// Dir returns the directory that relative specifiers in this module resolve against.
func (p ModulePath) Dir() string {
	return filepath.Dir(p.String())
}

// MarshalText implements encoding.TextMarshaler.
func (p ModulePath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ModulePath) UnmarshalText(text []byte) error {
	*p = NewModulePath(string(text))
	return nil
}
