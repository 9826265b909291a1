package domain

// Analysis is what the analyzer reports for one source file.
type Analysis struct {
	// Imports holds the specifiers of static import declarations in source order.
	// A specifier may appear more than once.
	Imports []string

	// Code is the lowered, directly executable module body.
	Code string
}

// Module is one visited source file in the dependency graph.
type Module struct {
	// Path is the absolute path of the source file and the graph key.
	Path ModulePath

	// Specifiers lists the distinct import specifiers in first-seen order.
	Specifiers []string

	// Dependencies maps each specifier as written to its resolved absolute path.
	Dependencies map[string]ModulePath

	// Code is the compiled body produced by the analyzer.
	Code string
}

// NewModule creates an empty module record for path.
func NewModule(path ModulePath) *Module {
	return &Module{
		Path:         path,
		Dependencies: make(map[string]ModulePath),
	}
}

// AddDependency records specifier -> resolved.
// It reports false when the specifier was already recorded, in which case the
// existing mapping is kept.
func (m *Module) AddDependency(specifier string, resolved ModulePath) bool {
	if _, exists := m.Dependencies[specifier]; exists {
		return false
	}
	m.Dependencies[specifier] = resolved
	m.Specifiers = append(m.Specifiers, specifier)
	return true
}

// DependencyPaths returns the resolved paths in specifier order.
func (m *Module) DependencyPaths() []ModulePath {
	paths := make([]ModulePath, 0, len(m.Specifiers))
	for _, spec := range m.Specifiers {
		paths = append(paths, m.Dependencies[spec])
	}
	return paths
}
