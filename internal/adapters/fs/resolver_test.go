package fs_test

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/fs"
	"go.trai.ch/knit/internal/core/domain"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	files := fs.NewMapFSAdapter("/app", fstest.MapFS{
		"index.js":      {Data: []byte("")},
		"util.js":       {Data: []byte("")},
		"lib/util.js":   {Data: []byte("")},
		"lib/helper.ts": {Data: []byte("")},
		"lib/dir/x.js":  {Data: []byte("")},
	})

	tests := []struct {
		name       string
		extensions []string
		importer   string
		specifier  string
		expected   string
	}{
		{
			name:      "relative to importer directory",
			importer:  "/app/index.js",
			specifier: "./util",
			expected:  "/app/util",
		},
		{
			name:      "same specifier from a nested importer",
			importer:  "/app/lib/index.js",
			specifier: "./util",
			expected:  "/app/lib/util",
		},
		{
			name:      "parent directory",
			importer:  "/app/lib/dir/x.js",
			specifier: "../../index.js",
			expected:  "/app/index.js",
		},
		{
			name:      "absolute specifier",
			importer:  "/app/lib/index.js",
			specifier: "/app/util.js",
			expected:  "/app/util.js",
		},
		{
			name:       "extension probing",
			extensions: []string{".ts", ".js"},
			importer:   "/app/lib/index.js",
			specifier:  "./helper",
			expected:   "/app/lib/helper.ts",
		},
		{
			name:       "exact path wins over probing",
			extensions: []string{".js"},
			importer:   "/app/index.js",
			specifier:  "./util.js",
			expected:   "/app/util.js",
		},
		{
			name:       "directory is not a module",
			extensions: []string{".js"},
			importer:   "/app/index.js",
			specifier:  "./lib/dir",
			expected:   "/app/lib/dir",
		},
		{
			name:       "unresolvable keeps the requested name",
			extensions: []string{".js"},
			importer:   "/app/index.js",
			specifier:  "./nope",
			expected:   "/app/nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resolver := fs.NewResolver(files, tt.extensions)
			got, err := resolver.Resolve(filepath.FromSlash(tt.importer), tt.specifier)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.expected), got)
		})
	}
}

func TestResolver_EmptySpecifier(t *testing.T) {
	t.Parallel()

	resolver := fs.NewResolver(fs.NewOSFS(), nil)
	_, err := resolver.Resolve("/app/index.js", "")
	require.ErrorContains(t, err, domain.ErrResolveFailed.Error())
}
