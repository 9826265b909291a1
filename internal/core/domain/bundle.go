package domain

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Bundle is the single text artifact emitted for one entry point.
type Bundle struct {
	Entry   ModulePath
	Modules int
	Script  string
}

// Digest returns the xxhash64 of the script as 16 hex digits.
func (b *Bundle) Digest() string {
	return FormatDigest(xxhash.Sum64String(b.Script))
}

// FormatDigest renders a 64-bit digest as zero-padded hex.
func FormatDigest(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// BuildInfo records the outcome of the last bundle written for an entry.
// It is informational only: builds never consult it to skip work.
type BuildInfo struct {
	Entry     string    `json:"entry,omitzero"`
	Output    string    `json:"output,omitzero"`
	Digest    string    `json:"digest,omitzero"`
	Modules   []string  `json:"modules,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
