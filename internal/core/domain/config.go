package domain

import "runtime"

const (
	// DefaultMaxModules bounds the number of distinct modules a single build may visit.
	DefaultMaxModules = 10000

	// DefaultTarget is the language level module bodies are lowered to.
	DefaultTarget = "es2015"
)

// Config holds the effective build settings after merging the config file and flags.
type Config struct {
	// Root is the directory the config file was found in, or the working directory.
	Root string

	// Entry is the absolute path of the entry module.
	Entry string

	// Output is the absolute path the bundle is written to.
	Output string

	// Parallelism bounds the number of modules read and analyzed concurrently.
	Parallelism int

	// MaxModules bounds the number of modules in one graph.
	MaxModules int

	// Extensions are appended in order to a resolved path that does not exist.
	Extensions []string

	// Target is the esbuild language target, e.g. "es2015".
	Target string

	// Defines maps expressions to literal replacements applied during lowering.
	Defines map[string]string
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig(root string) *Config {
	return &Config{
		Root:        root,
		Parallelism: runtime.NumCPU(),
		MaxModules:  DefaultMaxModules,
		Target:      DefaultTarget,
		Defines:     map[string]string{},
	}
}
