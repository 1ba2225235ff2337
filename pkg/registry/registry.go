// Package registry tracks which sources provide which models and keeps the
// active flags of the model graph in line with them.
//
// A source is anything that brings models along, such as a plugin, a
// configuration file or a deployed bundle. When a source appears, its
// models become active in the graph; when it goes away, the models it
// provided are deactivated unless another source still provides them.
package registry

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/events"
	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/model"
)

// Registry registers the models of named sources in a graph.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	graph   *graph.Graph
	sources map[string][]model.ModelDescription

	logger    *log.Logger
	publisher events.Publisher
	skip      []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(l *log.Logger) Option { return func(r *Registry) { r.logger = l } }

// WithPublisher sets the event publisher. Defaults to [events.NoopPublisher].
func WithPublisher(p events.Publisher) Option { return func(r *Registry) { r.publisher = p } }

// WithSkip ignores sources whose name contains any of the substrings.
func WithSkip(substrings ...string) Option {
	return func(r *Registry) { r.skip = append(r.skip, substrings...) }
}

// New creates a registry writing to g.
func New(g *graph.Graph, opts ...Option) *Registry {
	r := &Registry{graph: g, sources: make(map[string][]model.ModelDescription)}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if r.publisher == nil {
		r.publisher = &events.NoopPublisher{}
	}
	return r
}

// Skipped reports whether a source with this name is ignored.
func (r *Registry) Skipped(name string) bool {
	return slices.ContainsFunc(r.skip, func(s string) bool {
		return s != "" && strings.Contains(name, s)
	})
}

// AddSource registers the models of a source and returns them without
// duplicates. Adding a source again replaces its model set: models it no
// longer lists are unregistered.
//
// Skipped sources register nothing. Every model is validated before the
// graph is touched.
func (r *Registry) AddSource(ctx context.Context, name string, models []model.ModelDescription) ([]model.ModelDescription, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "source name cannot be empty")
	}
	if r.Skipped(name) {
		r.logger.Debug("skipping model source", "source", name)
		return nil, nil
	}

	var set []model.ModelDescription
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "source %s", name)
		}
		if !slices.Contains(set, m) {
			set = append(set, m)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.sources[name]
	r.sources[name] = set
	for _, m := range previous {
		if slices.Contains(set, m) {
			continue
		}
		if err := r.unregister(ctx, name, m); err != nil {
			return nil, err
		}
	}
	for _, m := range set {
		if err := r.graph.AddModel(ctx, m); err != nil {
			return nil, err
		}
		r.logger.Info("registered model", "model", m, "source", name)
		r.publish(ctx, events.TopicModelRegistered, events.ModelRegistered{Model: m, Source: name})
	}
	return slices.Clone(set), nil
}

// RemoveSource unregisters the models of a source and returns them.
// Models still provided by another source stay active. Removing an
// unknown source does nothing.
func (r *Registry) RemoveSource(ctx context.Context, name string) ([]model.ModelDescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	models, ok := r.sources[name]
	if !ok {
		r.logger.Debug("model source not registered", "source", name)
		return nil, nil
	}
	delete(r.sources, name)
	for _, m := range models {
		if err := r.unregister(ctx, name, m); err != nil {
			return nil, err
		}
	}
	return models, nil
}

// unregister deactivates m unless a source other than name still lists it.
// The caller holds r.mu and has already updated r.sources.
func (r *Registry) unregister(ctx context.Context, name string, m model.ModelDescription) error {
	for other, models := range r.sources {
		if other != name && slices.Contains(models, m) {
			r.logger.Debug("model still provided", "model", m, "source", other)
			return nil
		}
	}
	if err := r.graph.RemoveModel(ctx, m); err != nil {
		return err
	}
	r.logger.Info("unregistered model", "model", m, "source", name)
	r.publish(ctx, events.TopicModelUnregistered, events.ModelUnregistered{Model: m, Source: name})
	return nil
}

// RegisterModel activates a single model outside of any source.
func (r *Registry) RegisterModel(ctx context.Context, m model.ModelDescription) error {
	if err := r.graph.AddModel(ctx, m); err != nil {
		return err
	}
	r.logger.Debug("added model to model registry", "model", m)
	r.publish(ctx, events.TopicModelRegistered, events.ModelRegistered{Model: m})
	return nil
}

// UnregisterModel deactivates a single model, whichever source provided it.
func (r *Registry) UnregisterModel(ctx context.Context, m model.ModelDescription) error {
	if err := r.graph.RemoveModel(ctx, m); err != nil {
		return err
	}
	r.logger.Debug("removed model from model registry", "model", m)
	r.publish(ctx, events.TopicModelUnregistered, events.ModelUnregistered{Model: m})
	return nil
}

// Models returns every model provided by a registered source, sorted by
// name and version.
func (r *Registry) Models() []model.ModelDescription {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.ModelDescription
	for _, models := range r.sources {
		for _, m := range models {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	slices.SortFunc(out, model.Compare)
	return out
}

// Sources returns the sorted names of the registered sources.
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) publish(ctx context.Context, topic string, data any) {
	if err := r.publisher.Publish(ctx, topic, events.New(topic, data)); err != nil {
		r.logger.Warn("publish event", "topic", topic, "err", err)
	}
}
