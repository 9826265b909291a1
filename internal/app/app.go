// Package app implements the application layer for knit.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/knit/internal/adapters/analyzer"     //nolint:depguard // Wired in app layer
	fsadapter "go.trai.ch/knit/internal/adapters/fs" //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/adapters/telemetry"    //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/graph"
	"go.trai.ch/knit/internal/engine/runtime"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	files        ports.FileReader
	store        ports.ArtifactStore
	runner       ports.ScriptRunner
	watcher      ports.Watcher
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	files ports.FileReader,
	store ports.ArtifactStore,
	runner ports.ScriptRunner,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		files:        files,
		store:        store,
		runner:       runner,
		watcher:      watcher,
		logger:       log,
	}
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// BuildOptions selects what to bundle. Empty fields fall back to knit.yaml.
type BuildOptions struct {
	// Dir is the working directory; config discovery starts here.
	Dir string
	// Entry overrides the entry module, relative to Dir.
	Entry string
	// Output overrides the bundle path, relative to Dir.
	Output string
	// Trace logs one line per finished span.
	Trace bool
	// Watch rebuilds whenever a source directory of the graph changes.
	Watch bool
}

// Bundle builds the module graph of the entry, renders the bootstrap script
// and writes it to the output path.
func (a *App) Bundle(ctx context.Context, opts BuildOptions) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	tracer, shutdown := newTracer(a.logger, opts.Trace)
	defer shutdown(ctx)

	if opts.Watch {
		return a.watch(ctx, cfg, tracer)
	}

	_, err = a.bundleOnce(ctx, cfg, tracer)
	return err
}

// Run bundles the entry in memory and executes the script in-process.
// Nothing is written to disk.
func (a *App) Run(ctx context.Context, opts BuildOptions, stdout, stderr io.Writer) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	tracer, shutdown := newTracer(a.logger, opts.Trace)
	defer shutdown(ctx)

	_, bundle, err := a.build(ctx, cfg, tracer)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "run bundle")
	defer span.End()

	if err := a.runner.Run(ctx, cfg.Entry, bundle.Script, stdout, stderr); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Inspection is a bundle parsed back into its module graph.
type Inspection struct {
	// Path is the absolute path of the inspected bundle.
	Path string
	// Graph is the module graph embedded in the bundle.
	Graph *domain.Graph
	// Digest is the xxhash of the bundle script.
	Digest string
	// Info is the recorded build info for the entry, or nil when the bundle
	// was not produced in this project or has been rebuilt since.
	Info *domain.BuildInfo
}

// Inspect reads a bundle and recovers the module graph it embeds.
func (a *App) Inspect(_ context.Context, dir, path string) (*Inspection, error) {
	path, err := absFrom(dir, path)
	if err != nil {
		return nil, err
	}

	data, err := a.files.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read bundle"), "path", path)
	}

	script := string(data)
	g, err := runtime.Parse(script)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	inspection := &Inspection{
		Path:   path,
		Graph:  g,
		Digest: (&domain.Bundle{Script: script}).Digest(),
	}

	root, err := a.configLoader.DiscoverRoot(dir)
	if err != nil {
		return nil, err
	}
	info, err := a.store.Get(root, g.Entry().String())
	if err != nil {
		a.logger.Warn(fmt.Sprintf("ignoring build info: %v", err))
		return inspection, nil
	}
	if info != nil && info.Digest == inspection.Digest {
		inspection.Info = info
	}
	return inspection, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Dir is the working directory; config discovery starts here.
	Dir string
	// Output also removes the configured bundle.
	Output bool
}

// Clean removes the build info store and, optionally, the bundle.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Output {
		cfg, err := a.configLoader.Load(dirOrCwd(options.Dir))
		if err != nil {
			return zerr.Wrap(err, "failed to load configuration")
		}
		remove(cfg.Output, "bundle")
		remove(filepath.Join(cfg.Root, domain.DefaultKnitPath()), "workspace")
		return errs
	}

	root, err := a.configLoader.DiscoverRoot(dirOrCwd(options.Dir))
	if err != nil {
		return err
	}
	remove(filepath.Join(root, domain.DefaultStorePath()), "build info store")
	return errs
}

func (a *App) loadConfig(opts BuildOptions) (*domain.Config, error) {
	dir := dirOrCwd(opts.Dir)

	cfg, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Entry != "" {
		if cfg.Entry, err = absFrom(dir, opts.Entry); err != nil {
			return nil, err
		}
	}
	if opts.Output != "" {
		if cfg.Output, err = absFrom(dir, opts.Output); err != nil {
			return nil, err
		}
	}

	if cfg.Entry == "" {
		return nil, domain.ErrNoEntry
	}
	return cfg, nil
}

// build produces the graph and the rendered bundle for cfg.Entry. Engine
// objects are created per build since they depend on the loaded config.
func (a *App) build(ctx context.Context, cfg *domain.Config, tracer ports.Tracer) (*domain.Graph, *domain.Bundle, error) {
	an, err := analyzer.New(analyzer.Options{Target: cfg.Target, Defines: cfg.Defines})
	if err != nil {
		return nil, nil, err
	}

	builder := graph.NewBuilder(
		a.files,
		an,
		fsadapter.NewResolver(a.files, cfg.Extensions),
		tracer,
		a.logger,
		graph.WithParallelism(cfg.Parallelism),
		graph.WithMaxModules(cfg.MaxModules),
	)

	g, err := builder.Build(ctx, cfg.Entry)
	if err != nil {
		return nil, nil, errors.Join(domain.ErrBuildFailed, err)
	}

	_, span := tracer.Start(ctx, "render bundle", ports.WithAttribute("modules", g.Len()))
	defer span.End()

	bundle, err := runtime.Render(g)
	if err != nil {
		span.RecordError(err)
		return nil, nil, errors.Join(domain.ErrBuildFailed, err)
	}
	return g, bundle, nil
}

func (a *App) bundleOnce(ctx context.Context, cfg *domain.Config, tracer ports.Tracer) (*domain.Graph, error) {
	g, bundle, err := a.build(ctx, cfg, tracer)
	if err != nil {
		return nil, err
	}

	if err := a.store.Write(cfg.Root, cfg.Output, bundle, g.Paths()); err != nil {
		return nil, err
	}

	a.logger.Info(fmt.Sprintf("bundled %d modules into %s (%s)", bundle.Modules, displayPath(cfg.Root, cfg.Output), bundle.Digest()))
	return g, nil
}

// newTracer returns the tracer for one command. With trace enabled, spans go
// through an OTel provider whose only processor logs them.
func newTracer(log ports.Logger, trace bool) (ports.Tracer, func(context.Context)) {
	if !trace {
		return telemetry.NewNoOpTracer(), func(context.Context) {}
	}

	tp := setupOTel(telemetry.NewBridge(log))
	return telemetry.NewOTelTracer("knit"), func(ctx context.Context) {
		_ = tp.Shutdown(ctx)
	}
}

// setupOTel configures the OpenTelemetry SDK with the logging bridge.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp
}

func dirOrCwd(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func absFrom(dir, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dirOrCwd(dir), path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
	}
	return abs, nil
}

func displayPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
