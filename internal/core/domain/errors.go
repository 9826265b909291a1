package domain

import "go.trai.ch/zerr"

var (
	// ErrReadFailed is returned when a module named by the entry point or by a resolved import
	// does not exist or cannot be read.
	ErrReadFailed = zerr.New("failed to read module")

	// ErrParseFailed is returned when the analyzer rejects the contents of a module.
	ErrParseFailed = zerr.New("failed to parse module")

	// ErrResolveFailed is returned when an import specifier cannot be turned into an absolute path.
	ErrResolveFailed = zerr.New("failed to resolve import")

	// ErrModuleLimitExceeded is returned when the graph grows past the configured module ceiling.
	ErrModuleLimitExceeded = zerr.New("module limit exceeded")

	// ErrNoEntry is returned when neither the command line nor the config names an entry file.
	ErrNoEntry = zerr.New("no entry file specified")

	// ErrEntryNotAbsolute is returned when the builder is handed a relative entry path.
	ErrEntryNotAbsolute = zerr.New("entry path must be absolute")

	// ErrDuplicateModule is returned when a module is added to a graph that already holds its path.
	ErrDuplicateModule = zerr.New("module already exists")

	// ErrMissingDependency is returned when a module maps a specifier to a path absent from the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrModuleNotFound is returned when a graph lookup misses.
	ErrModuleNotFound = zerr.New("module not found in graph")

	// ErrMalformedBundle is returned when a bundle script cannot be parsed back into a graph.
	ErrMalformedBundle = zerr.New("malformed bundle")

	// ErrRenderFailed is returned when the bootstrap script cannot be generated.
	ErrRenderFailed = zerr.New("failed to render bundle")

	// ErrScriptFailed is returned when executing a bundle throws.
	ErrScriptFailed = zerr.New("bundle execution failed")

	// ErrBuildFailed is returned when the bundle build fails as a whole.
	ErrBuildFailed = zerr.New("build failed")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid config value")

	// ErrEnvFileReadFailed is returned when the env file named in the config cannot be read.
	ErrEnvFileReadFailed = zerr.New("failed to read env file")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrArtifactWriteFailed is returned when the bundle file cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write bundle")

	// ErrWatchFailed is returned when the file watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch sources")
)
