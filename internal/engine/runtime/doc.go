// Package runtime turns a module graph into a single self-executing script.
//
// The script carries the graph manifest (each module's specifier to path
// mapping), a table of module functions and a small require loader. Loading
// starts at the entry module.
//
// The loader keeps no exports cache. Every require call builds a fresh module
// object and runs the module body again, so side effects repeat and two
// importers of the same module receive distinct exports objects. A consequence
// is that an import cycle recurses without bound when the script runs; the
// graph builder reports such cycles as warnings.
package runtime
