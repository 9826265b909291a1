package app_test

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/app"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.uber.org/mock/gomock"
)

func eventsOf(events ...ports.WatchEvent) iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, event := range events {
			if !yield(event) {
				return
			}
		}
	}
}

func TestApp_Bundle_Watch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, projectFiles())
	messages := env.recordInfo()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	env.loader.EXPECT().Load("/app").Return(projectConfig(), nil)
	gomock.InOrder(
		env.watcher.EXPECT().Start(gomock.Any()).Return(nil),
		env.watcher.EXPECT().Watch([]string{"/app"}).Return(nil),
	)
	env.watcher.EXPECT().Watch([]string{"/app", "/app/lib"}).Return(nil).Times(2)
	env.watcher.EXPECT().Events().Return(eventsOf(
		ports.WatchEvent{Path: "/app/dist/bundle.js", Operation: ports.OpWrite},
		ports.WatchEvent{Path: "/app/.knit/store/0123456789abcdef.json", Operation: ports.OpCreate},
		ports.WatchEvent{Path: "/app/lib/greet.js", Operation: ports.OpWrite},
		ports.WatchEvent{Path: "/app/lib/greet.js", Operation: ports.OpWrite},
	))
	env.watcher.EXPECT().Stop().Return(nil)

	writes := 0
	env.store.EXPECT().
		Write("/app", "/app/dist/bundle.js", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_, _ string, _ *domain.Bundle, _ []string) error {
			writes++
			if writes == 2 {
				cancel()
			}
			return nil
		}).
		Times(2)

	err := env.app.Bundle(ctx, app.BuildOptions{Dir: "/app", Watch: true})
	require.NoError(t, err)
	require.ErrorIs(t, ctx.Err(), context.Canceled)

	assert.Contains(t, messages(), "watching for changes")
	assert.Contains(t, messages(), "1 file(s) changed, rebuilding")
}

func TestApp_Bundle_Watch_BuildErrorKeepsWatching(t *testing.T) {
	t.Parallel()

	files := projectFiles()
	delete(files, "lib/greet.js")
	env := newTestEnv(t, files)
	env.recordInfo()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env.loader.EXPECT().Load("/app").Return(projectConfig(), nil)
	env.watcher.EXPECT().Start(gomock.Any()).Return(nil)
	env.watcher.EXPECT().Watch([]string{"/app"}).Return(nil)
	env.watcher.EXPECT().Events().Return(eventsOf())
	env.watcher.EXPECT().Stop().Return(nil)
	env.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrBuildFailed)
		cancel()
	})

	err := env.app.Bundle(ctx, app.BuildOptions{Dir: "/app", Watch: true})
	require.NoError(t, err)
}

func TestApp_Bundle_Watch_StartError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, projectFiles())
	env.loader.EXPECT().Load("/app").Return(projectConfig(), nil)
	env.watcher.EXPECT().Start(gomock.Any()).Return(domain.ErrWatchFailed)

	err := env.app.Bundle(context.Background(), app.BuildOptions{Dir: "/app", Watch: true})
	require.ErrorIs(t, err, domain.ErrWatchFailed)
}

func TestIgnoredPath(t *testing.T) {
	t.Parallel()

	cfg := &domain.Config{Root: "/app", Output: "/app/dist/bundle.js"}

	tests := []struct {
		path string
		want bool
	}{
		{path: "/app/dist/bundle.js", want: true},
		{path: "/app/.knit", want: true},
		{path: "/app/.knit/store/abc.json", want: true},
		{path: "/app/.knitignore", want: false},
		{path: "/app/dist/other.js", want: false},
		{path: "/app/dist/.bundle.js.tmp-123456", want: true},
		{path: "/app/dist/.other.js.tmp-123456", want: false},
		{path: "/app/src/.bundle.js.tmp-123456", want: false},
		{path: "/app/index.js", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, app.IgnoredPath(cfg, tt.path))
		})
	}
}

func TestGraphDirs(t *testing.T) {
	t.Parallel()

	g := domain.NewGraph(domain.NewModulePath("/app/src/index.js"))
	for _, path := range []string{"/app/src/index.js", "/app/lib/b.js", "/app/src/a.js", "/app/lib/c.js"} {
		require.NoError(t, g.AddModule(domain.NewModule(domain.NewModulePath(path))))
	}

	assert.Equal(t, []string{"/app/lib", "/app/src"}, app.GraphDirs(g))
}
