// Package domain contains the core domain models of the module bundler.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph maps absolute module paths to their module records.
// Modules are kept in the order they were added, which for graphs produced by
// the builder is breadth-first from the entry.
type Graph struct {
	entry   ModulePath
	modules map[ModulePath]*Module
	order   []ModulePath
}

// NewGraph creates an empty graph rooted at entry.
func NewGraph(entry ModulePath) *Graph {
	return &Graph{
		entry:   entry,
		modules: make(map[ModulePath]*Module),
	}
}

// Entry returns the entry module path.
func (g *Graph) Entry() ModulePath {
	return g.entry
}

// AddModule adds m to the graph.
// It returns an error if a module with the same path already exists.
func (g *Graph) AddModule(m *Module) error {
	if _, exists := g.modules[m.Path]; exists {
		return zerr.With(ErrDuplicateModule, "path", m.Path.String())
	}
	g.modules[m.Path] = m
	g.order = append(g.order, m.Path)
	return nil
}

// Module returns the module stored under path.
func (g *Graph) Module(path ModulePath) (*Module, bool) {
	m, ok := g.modules[path]
	return m, ok
}

// Has reports whether path is a key of the graph.
func (g *Graph) Has(path ModulePath) bool {
	_, ok := g.modules[path]
	return ok
}

// Len returns the number of modules.
func (g *Graph) Len() int {
	return len(g.modules)
}

// Paths returns the module paths in insertion order.
func (g *Graph) Paths() []string {
	paths := make([]string, len(g.order))
	for i, p := range g.order {
		paths[i] = p.String()
	}
	return paths
}

// SortedPaths returns the module paths in lexical order.
func (g *Graph) SortedPaths() []string {
	paths := g.Paths()
	slices.Sort(paths)
	return paths
}

// Walk returns an iterator over the modules in insertion order.
func (g *Graph) Walk() iter.Seq[*Module] {
	return func(yield func(*Module) bool) {
		for _, p := range g.order {
			if !yield(g.modules[p]) {
				return
			}
		}
	}
}

// Validate checks that the entry is present and that every recorded
// dependency points at a module of the graph.
func (g *Graph) Validate() error {
	if !g.Has(g.entry) {
		return zerr.With(ErrModuleNotFound, "path", g.entry.String())
	}
	for m := range g.Walk() {
		for _, spec := range m.Specifiers {
			dep := m.Dependencies[spec]
			if !g.Has(dep) {
				err := zerr.With(ErrMissingDependency, "importer", m.Path.String())
				err = zerr.With(err, "specifier", spec)
				return zerr.With(err, "path", dep.String())
			}
		}
	}
	return nil
}

// FindCycle returns the first import cycle reachable from the entry as a path
// list whose last element repeats the first, or nil if the graph is acyclic.
// Cycles are legal in a bundle, but without an exports cache a module that
// requires itself transitively at load time never terminates.
func (g *Graph) FindCycle() []ModulePath {
	state := make(map[ModulePath]int) // 0: unvisited, 1: visiting, 2: visited
	var stack []ModulePath

	var visit func(p ModulePath) []ModulePath
	visit = func(p ModulePath) []ModulePath {
		state[p] = 1
		stack = append(stack, p)

		if m, ok := g.modules[p]; ok {
			for _, dep := range m.DependencyPaths() {
				switch state[dep] {
				case 1:
					start := slices.Index(stack, dep)
					cycle := slices.Clone(stack[start:])
					return append(cycle, dep)
				case 0:
					if cycle := visit(dep); cycle != nil {
						return cycle
					}
				}
			}
		}

		state[p] = 2
		stack = stack[:len(stack)-1]
		return nil
	}

	if !g.Has(g.entry) {
		return nil
	}
	return visit(g.entry)
}

// FormatCycle renders a cycle as "a -> b -> a".
func FormatCycle(cycle []ModulePath) string {
	parts := make([]string, len(cycle))
	for i, p := range cycle {
		parts[i] = p.String()
	}
	return strings.Join(parts, " -> ")
}
