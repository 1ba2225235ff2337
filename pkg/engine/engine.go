package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modelgraph/pkg/events"
	"github.com/matzehuels/modelgraph/pkg/graph"
	mgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability"
)

// defaultWorkers is the number of transformation files parsed concurrently
// by LoadFiles.
const defaultWorkers = 8

// Engine stores transformation descriptions in a model graph. It keeps
// the transformations of a file in sync with the file's content and
// announces every change on the event bus.
type Engine struct {
	graph     *graph.Graph
	logger    *log.Logger
	publisher events.Publisher
	hooks     observability.EngineHooks
	workers   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithPublisher sets the event publisher. Defaults to [events.NoopPublisher].
func WithPublisher(p events.Publisher) Option { return func(e *Engine) { e.publisher = p } }

// WithHooks sets the observability hooks. Defaults to the hooks registered
// with [observability.SetEngineHooks] when New is called.
func WithHooks(h observability.EngineHooks) Option { return func(e *Engine) { e.hooks = h } }

// WithWorkers sets how many files LoadFiles parses at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an engine on top of g.
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{graph: g, workers: defaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.publisher == nil {
		e.publisher = &events.NoopPublisher{}
	}
	if e.hooks == nil {
		e.hooks = observability.Engine()
	}
	return e
}

// Graph returns the graph the engine writes to.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// SaveDescription adds d to the graph. An empty d.ID is replaced by the id
// the graph assigns.
func (e *Engine) SaveDescription(ctx context.Context, d *model.TransformationDescription) error {
	if err := e.graph.AddTransformation(ctx, d); err != nil {
		return err
	}
	e.logger.Debug("transformation saved", "id", d.ID, "source", d.Source, "target", d.Target)
	e.publish(ctx, events.TopicTransformationSaved, events.Saved(d))
	return nil
}

// SaveDescriptions saves every description in order and stops at the first
// failure.
func (e *Engine) SaveDescriptions(ctx context.Context, descs []*model.TransformationDescription) error {
	for _, d := range descs {
		if err := e.SaveDescription(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDescription removes the transformation d describes (see
// [graph.Graph.RemoveTransformation]).
func (e *Engine) DeleteDescription(ctx context.Context, d *model.TransformationDescription) error {
	if err := e.graph.RemoveTransformation(ctx, d); err != nil {
		return err
	}
	e.logger.Debug("transformation deleted", "id", d.ID, "source", d.Source, "target", d.Target)
	e.publish(ctx, events.TopicTransformationDeleted, events.Deleted(d))
	return nil
}

// LoadFile reads the transformation file at path and makes its content the
// only transformations registered for that file: everything saved from an
// earlier version of the file is removed first. It returns the number of
// transformations saved.
//
// A file that cannot be read or parsed leaves the graph unchanged.
func (e *Engine) LoadFile(ctx context.Context, path string) (int, error) {
	start := time.Now()
	descs, err := mgio.ReadFile(path)
	if err != nil {
		e.hooks.OnFileLoaded(ctx, path, 0, time.Since(start), err)
		return 0, err
	}
	return e.apply(ctx, path, descs, start)
}

// LoadFiles loads transformation files and directories (see
// [mgio.ExpandPaths]). Files are parsed concurrently and applied in path
// order. Nothing is applied when any file fails to parse. It returns the
// total number of transformations saved.
func (e *Engine) LoadFiles(ctx context.Context, paths ...string) (int, error) {
	files, err := mgio.ExpandPaths(paths...)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	parsed := make([][]*model.TransformationDescription, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			descs, err := mgio.ReadFile(path)
			if err != nil {
				e.hooks.OnFileLoaded(ctx, path, 0, time.Since(start), err)
				return err
			}
			parsed[i] = descs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for i, path := range files {
		n, err := e.apply(ctx, path, parsed[i], start)
		total += n
		if err != nil {
			return total, err
		}
	}
	e.logger.Info("transformation files loaded", "files", len(files), "transformations", total)
	return total, nil
}

func (e *Engine) apply(ctx context.Context, path string, descs []*model.TransformationDescription, start time.Time) (int, error) {
	removed, err := e.unload(ctx, path)
	if err != nil {
		e.hooks.OnFileLoaded(ctx, path, 0, time.Since(start), err)
		return 0, err
	}

	saved := 0
	for _, d := range descs {
		if err := e.SaveDescription(ctx, d); err != nil {
			e.hooks.OnFileLoaded(ctx, path, saved, time.Since(start), err)
			return saved, err
		}
		saved++
	}

	e.logger.Debug("transformation file loaded", "path", path, "saved", saved, "replaced", removed)
	e.hooks.OnFileLoaded(ctx, path, saved, time.Since(start), nil)
	e.publish(ctx, events.TopicFileLoaded, events.FileLoaded{Path: path, Count: saved, Removed: removed})
	return saved, nil
}

// UnloadFile removes every transformation saved from the file at path and
// returns how many were removed.
func (e *Engine) UnloadFile(ctx context.Context, path string) (int, error) {
	removed, err := e.unload(ctx, path)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		e.logger.Debug("transformation file unloaded", "path", path, "removed", removed)
		e.publish(ctx, events.TopicFileUnloaded, events.FileUnloaded{Path: path, Removed: removed})
	}
	return removed, nil
}

func (e *Engine) unload(ctx context.Context, path string) (int, error) {
	old, err := e.graph.TransformationsPerFileName(ctx, path)
	if err != nil {
		return 0, err
	}
	for _, d := range old {
		if err := e.DeleteDescription(ctx, d); err != nil {
			return 0, err
		}
	}
	return len(old), nil
}

// TransformationPath returns the transformations leading from source to
// target that use every required id. See [graph.Graph.TransformationPath].
func (e *Engine) TransformationPath(ctx context.Context, source, target model.ModelDescription, required []string) ([]*model.TransformationDescription, error) {
	return e.graph.TransformationPath(ctx, source, target, required)
}

// IsTransformationPossible reports whether [Engine.TransformationPath]
// would find a path.
func (e *Engine) IsTransformationPossible(ctx context.Context, source, target model.ModelDescription, required []string) bool {
	return e.graph.IsTransformationPossible(ctx, source, target, required)
}

// publish sends an event. Failures are logged and otherwise ignored: the
// graph change has already happened.
func (e *Engine) publish(ctx context.Context, topic string, data any) {
	if err := e.publisher.Publish(ctx, topic, events.New(topic, data)); err != nil {
		e.logger.Warn("publish event", "topic", topic, "err", err)
	}
}
