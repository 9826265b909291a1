// Package graph discovers the module graph reachable from an entry file.
package graph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Builder walks static imports breadth-first from an entry file.
//
// Reading, analysis and resolution of queued modules run on a bounded worker
// pool. A single consumer owns the visited index and consumes results strictly
// in queue order, so the graph and the first reported error do not depend on
// worker timing.
type Builder struct {
	files       ports.FileReader
	analyzer    ports.Analyzer
	resolver    ports.SpecifierResolver
	tracer      ports.Tracer
	logger      ports.Logger
	parallelism int
	maxModules  int
}

// Option configures a Builder.
type Option func(*Builder)

// WithParallelism bounds the number of modules processed concurrently.
// Values below one select runtime.NumCPU().
func WithParallelism(n int) Option {
	return func(b *Builder) {
		b.parallelism = n
	}
}

// WithMaxModules bounds the number of distinct modules in one graph.
// Values below one select domain.DefaultMaxModules.
func WithMaxModules(n int) Option {
	return func(b *Builder) {
		b.maxModules = n
	}
}

// NewBuilder creates a new Builder with the given dependencies.
func NewBuilder(
	files ports.FileReader,
	analyzer ports.Analyzer,
	resolver ports.SpecifierResolver,
	tracer ports.Tracer,
	logger ports.Logger,
	opts ...Option,
) *Builder {
	b := &Builder{
		files:    files,
		analyzer: analyzer,
		resolver: resolver,
		tracer:   tracer,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.parallelism < 1 {
		b.parallelism = runtime.NumCPU()
	}
	if b.maxModules < 1 {
		b.maxModules = domain.DefaultMaxModules
	}
	return b
}

// Build discovers every module reachable from entry through static imports.
// entry must be absolute. Each distinct path is read and analyzed exactly once,
// which also makes import cycles terminate.
func (b *Builder) Build(ctx context.Context, entry string) (*domain.Graph, error) {
	if !filepath.IsAbs(entry) {
		return nil, zerr.With(domain.ErrEntryNotAbsolute, "entry", entry)
	}

	ctx, span := b.tracer.Start(ctx, "build graph", ports.WithAttribute("entry", entry))
	defer span.End()

	graph, err := b.newBuildState(ctx, domain.NewModulePath(entry)).run()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := graph.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("modules", graph.Len())

	if cycle := graph.FindCycle(); cycle != nil && b.logger != nil {
		b.logger.Warn(fmt.Sprintf(
			"import cycle %s: modules are re-evaluated on every require, so this cycle recurses when the bundle runs",
			domain.FormatCycle(cycle),
		))
	}

	return graph, nil
}

// queued is a path waiting in the worklist together with the module that first imported it.
type queued struct {
	path     domain.ModulePath
	importer domain.ModulePath
}

// result is what a worker reports for one queued path.
type result struct {
	index  int
	module *domain.Module
	err    error
}

type buildState struct {
	b         *Builder
	ctx       context.Context
	cancel    context.CancelFunc
	g         *errgroup.Group
	resultsCh chan result
	graph     *domain.Graph

	queue      []queued
	visited    map[domain.ModulePath]struct{}
	pending    map[int]result
	dispatched int
	consumed   int
	active     int
}

func (b *Builder) newBuildState(ctx context.Context, entry domain.ModulePath) *buildState {
	ctx, cancel := context.WithCancel(ctx)
	g := &errgroup.Group{}
	g.SetLimit(b.parallelism)

	return &buildState{
		b:         b,
		ctx:       ctx,
		cancel:    cancel,
		g:         g,
		resultsCh: make(chan result, b.parallelism),
		graph:     domain.NewGraph(entry),
		queue:     []queued{{path: entry}},
		visited:   map[domain.ModulePath]struct{}{entry: {}},
		pending:   make(map[int]result),
	}
}

func (state *buildState) run() (*domain.Graph, error) {
	defer func() {
		state.cancel()
		_ = state.g.Wait()
	}()

	for state.consumed < len(state.queue) {
		state.schedule()

		select {
		case res := <-state.resultsCh:
			state.active--
			state.pending[res.index] = res
		case <-state.ctx.Done():
			return nil, state.ctx.Err()
		}

		if err := state.consumeReady(); err != nil {
			return nil, err
		}
	}

	return state.graph, nil
}

// schedule starts workers for queued paths until the pool is full.
func (state *buildState) schedule() {
	for state.dispatched < len(state.queue) && state.active < state.b.parallelism {
		index, item := state.dispatched, state.queue[state.dispatched]
		state.dispatched++
		state.active++

		state.g.Go(func() error {
			state.process(index, item)
			return nil
		})
	}
}

// consumeReady folds finished results into the graph in queue order.
func (state *buildState) consumeReady() error {
	for {
		res, ok := state.pending[state.consumed]
		if !ok {
			return nil
		}
		delete(state.pending, state.consumed)
		state.consumed++

		if res.err != nil {
			return res.err
		}
		if err := state.graph.AddModule(res.module); err != nil {
			return err
		}
		for _, dep := range res.module.DependencyPaths() {
			if err := state.enqueue(dep, res.module.Path); err != nil {
				return err
			}
		}
	}
}

// enqueue adds path to the worklist unless it was already visited.
func (state *buildState) enqueue(path, importer domain.ModulePath) error {
	if _, seen := state.visited[path]; seen {
		return nil
	}
	if len(state.queue) >= state.b.maxModules {
		err := zerr.With(domain.ErrModuleLimitExceeded, "limit", state.b.maxModules)
		return zerr.With(err, "path", path.String())
	}
	state.visited[path] = struct{}{}
	state.queue = append(state.queue, queued{path: path, importer: importer})
	return nil
}

// process reads, analyzes and resolves one module. It runs on a worker.
func (state *buildState) process(index int, item queued) {
	if state.ctx.Err() != nil {
		return
	}

	module, err := state.b.load(state.ctx, item)

	select {
	case state.resultsCh <- result{index: index, module: module, err: err}:
	case <-state.ctx.Done():
	}
}

func (b *Builder) load(ctx context.Context, item queued) (*domain.Module, error) {
	path := item.path.String()

	_, span := b.tracer.Start(ctx, "analyze module", ports.WithAttribute("path", path))
	defer span.End()

	src, err := b.files.ReadFile(path)
	if err != nil {
		err = zerr.With(errors.Join(domain.ErrReadFailed, err), "path", path)
		if !item.importer.IsZero() {
			err = zerr.With(err, "importer", item.importer.String())
		}
		span.RecordError(err)
		return nil, err
	}

	analysis, err := b.analyzer.Analyze(path, src)
	if err != nil {
		err = zerr.With(err, "path", path)
		span.RecordError(err)
		return nil, err
	}

	module := domain.NewModule(item.path)
	module.Code = analysis.Code
	for _, spec := range analysis.Imports {
		resolved, err := b.resolver.Resolve(path, spec)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		module.AddDependency(spec, domain.NewModulePath(resolved))
	}
	span.SetAttribute("imports", len(module.Specifiers))

	return module, nil
}
