package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/core/domain"
)

// testModule describes one module of a hand-built graph.
type testModule struct {
	path string
	code string
	deps [][2]string // specifier, resolved path
}

func newGraph(t *testing.T, modules ...testModule) *domain.Graph {
	t.Helper()
	g := domain.NewGraph(domain.NewModulePath(modules[0].path))
	for _, tm := range modules {
		m := domain.NewModule(domain.NewModulePath(tm.path))
		m.Code = tm.code
		for _, dep := range tm.deps {
			m.AddDependency(dep[0], domain.NewModulePath(dep[1]))
		}
		require.NoError(t, g.AddModule(m))
	}
	return g
}

func requireSameGraph(t *testing.T, want, got *domain.Graph) {
	t.Helper()
	require.Equal(t, want.Entry(), got.Entry())
	require.Equal(t, want.Paths(), got.Paths())
	for m := range want.Walk() {
		other, ok := got.Module(m.Path)
		require.True(t, ok, "missing module %s", m.Path)
		require.Equal(t, m.Specifiers, other.Specifiers, "specifiers of %s", m.Path)
		require.Equal(t, m.Dependencies, other.Dependencies, "dependencies of %s", m.Path)
		require.Equal(t, m.Code, other.Code, "code of %s", m.Path)
	}
}
