package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/cas"
	"go.trai.ch/knit/internal/core/domain"
)

func TestStore_WriteAndGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	output := filepath.Join(root, "dist", "bundle.js")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := cas.NewStore().WithClock(func() time.Time { return fixed })

	bundle := &domain.Bundle{
		Entry:   domain.NewModulePath("/app/index.js"),
		Modules: 2,
		Script:  "console.log(1);\n",
	}
	modules := []string{"/app/index.js", "/app/a.js"}

	require.NoError(t, store.Write(root, output, bundle, modules))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, bundle.Script, string(data))

	info, err := store.Get(root, "/app/index.js")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "/app/index.js", info.Entry)
	assert.Equal(t, output, info.Output)
	assert.Equal(t, bundle.Digest(), info.Digest)
	assert.Equal(t, modules, info.Modules)
	assert.True(t, fixed.Equal(info.Timestamp), "timestamp %s", info.Timestamp)

	entries, err := os.ReadDir(filepath.Dir(output))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_WriteReplacesOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	output := filepath.Join(root, "bundle.js")
	store := cas.NewStore()

	for _, script := range []string{"first", "second"} {
		bundle := &domain.Bundle{Entry: domain.NewModulePath("/app/index.js"), Script: script}
		require.NoError(t, store.Write(root, output, bundle, nil))
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	info, err := cas.NewStore().Get(t.TempDir(), "/app/index.js")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestStore_GetCorrupted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.BuildInfo{Entry: "/app/index.js"}))

	files, err := filepath.Glob(filepath.Join(root, domain.DefaultStorePath(), "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("{not json"), domain.FilePerm))

	_, err = store.Get(root, "/app/index.js")
	require.ErrorContains(t, err, domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_WriteFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, domain.FilePerm))

	bundle := &domain.Bundle{Entry: domain.NewModulePath("/app/index.js"), Script: "x"}
	err := cas.NewStore().Write(root, filepath.Join(blocker, "bundle.js"), bundle, nil)
	require.ErrorContains(t, err, domain.ErrArtifactWriteFailed.Error())
}
