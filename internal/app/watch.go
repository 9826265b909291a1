package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/knit/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
)

// watch bundles once and then rebuilds the whole graph after every debounced
// change in a directory holding one of its modules. Build errors are logged
// and the last successful set of directories stays watched.
func (a *App) watch(ctx context.Context, cfg *domain.Config, tracer ports.Tracer) error {
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		default:
			// A rebuild is already queued and will see these changes too.
		}
	})
	defer debouncer.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range a.watcher.Events() {
			if ignoredPath(cfg, event.Path) {
				continue
			}
			debouncer.Add(event.Path)
		}
	}()
	defer func() {
		_ = a.watcher.Stop()
		<-done
	}()

	if err := a.watcher.Watch([]string{filepath.Dir(cfg.Entry)}); err != nil {
		return err
	}

	rebuild := func() {
		g, err := a.bundleOnce(ctx, cfg, tracer)
		if err != nil {
			if ctx.Err() == nil {
				a.logger.Error(err)
			}
			return
		}
		if err := a.watcher.Watch(graphDirs(g)); err != nil {
			a.logger.Error(err)
		}
	}

	rebuild()
	a.logger.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			a.logger.Info(fmt.Sprintf("%d file(s) changed, rebuilding", len(paths)))
			rebuild()
		}
	}
}

// ignoredPath reports whether a change was caused by knit itself.
func ignoredPath(cfg *domain.Config, path string) bool {
	if path == cfg.Output || domain.IsTempFileOf(cfg.Output, path) {
		return true
	}
	knitDir := filepath.Join(cfg.Root, domain.DefaultKnitPath())
	return path == knitDir || strings.HasPrefix(path, knitDir+string(filepath.Separator))
}

// graphDirs returns the sorted directories containing the modules of g.
func graphDirs(g *domain.Graph) []string {
	dirs := make([]string, 0, g.Len())
	for m := range g.Walk() {
		dirs = append(dirs, m.Path.Dir())
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}
