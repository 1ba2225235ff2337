package graph

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/observability"
	"github.com/matzehuels/modelgraph/pkg/store"
)

// Graph is the model-transformation graph. Models are nodes; transformation
// descriptions are directed edges between them.
//
// Graph is safe for concurrent use. Mutations hold an exclusive lock, path
// searches and lookups a shared one.
type Graph struct {
	mu           sync.RWMutex
	store        store.Store
	descriptions map[string]*model.TransformationDescription
	counter      atomic.Uint64

	logger *log.Logger
	hooks  observability.GraphHooks
}

// Option configures a Graph.
type Option func(*Graph)

// WithStore sets the backing store. Defaults to a new [store.MemoryStore].
func WithStore(s store.Store) Option { return func(g *Graph) { g.store = s } }

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(l *log.Logger) Option { return func(g *Graph) { g.logger = l } }

// WithHooks sets the observability hooks. Defaults to the hooks registered
// with [observability.SetGraphHooks] when New is called.
func WithHooks(h observability.GraphHooks) Option { return func(g *Graph) { g.hooks = h } }

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{descriptions: make(map[string]*model.TransformationDescription)}
	for _, opt := range opts {
		opt(g)
	}
	if g.store == nil {
		g.store = store.NewMemoryStore()
	}
	if g.logger == nil {
		g.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if g.hooks == nil {
		g.hooks = observability.Graph()
	}
	return g
}

// Close closes the backing store.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Close()
}

func storeErr(err error, format string, args ...any) error {
	return mgerrors.Wrap(mgerrors.ErrCodeInvalidState, err, format, args...)
}

// AddModel marks the model as active, creating its node if needed.
// Adding an already active model is a no-op.
func (g *Graph) AddModel(ctx context.Context, m model.ModelDescription) error {
	if err := m.Validate(); err != nil {
		return err
	}
	key := m.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.PutNode(ctx, store.Node{Key: key, Active: true}); err != nil {
		return storeErr(err, "add model %s", key)
	}
	g.logger.Debug("model activated", "model", key)
	g.hooks.OnModelAdded(ctx, key)
	return nil
}

// RemoveModel marks the model as inactive. Its node and edges stay in the
// graph so the model can be reactivated. Removing an unknown model only logs
// a warning.
func (g *Graph) RemoveModel(ctx context.Context, m model.ModelDescription) error {
	key := m.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.store.Node(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.logger.Warn("couldn't remove model since it doesn't exist", "model", key)
			return nil
		}
		return storeErr(err, "remove model %s", key)
	}
	if err := g.store.PutNode(ctx, store.Node{Key: key, Active: false}); err != nil {
		return storeErr(err, "remove model %s", key)
	}
	g.logger.Debug("model deactivated", "model", key)
	g.hooks.OnModelRemoved(ctx, key)
	return nil
}

// IsModelActive reports whether the model's node exists and is active.
func (g *Graph) IsModelActive(ctx context.Context, m model.ModelDescription) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n, err := g.store.Node(ctx, m.Key())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr(err, "read model %s", m.Key())
	}
	return n.Active, nil
}

// nextID returns a fresh system-generated transformation id.
func (g *Graph) nextID() string {
	return model.InternalIDPrefix + strconv.FormatUint(g.counter.Add(1), 10)
}

// AddTransformation adds d as an edge from its source to its target model.
//
// If d.ID is empty, a system-generated id is assigned and written back to d.
// Missing endpoint nodes are created inactive. The graph keeps its own copy
// of d, so later changes to d do not affect the graph.
func (g *Graph) AddTransformation(ctx context.Context, d *model.TransformationDescription) error {
	if d == nil {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "transformation description is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	from, to := d.Source.Key(), d.Target.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.ensureNode(ctx, from); err != nil {
		return err
	}
	if err := g.ensureNode(ctx, to); err != nil {
		return err
	}

	generated := d.ID == ""
	edge := store.Edge{
		ID:          d.ID,
		From:        from,
		To:          to,
		FileName:    d.FileName,
		Connections: simpleConnections(d.PropertyConnections()),
	}
	for {
		if generated {
			edge.ID = g.nextID()
		}
		err := g.store.AddEdge(ctx, edge)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicateEdge) {
			return storeErr(err, "add transformation %s", edge.ID)
		}
		// A persistent store may hold ids generated by an earlier process.
		if !generated {
			return mgerrors.New(mgerrors.ErrCodeInvalidInput, "transformation %s already exists", edge.ID)
		}
	}
	d.ID = edge.ID
	g.descriptions[d.ID] = d.Clone()

	g.logger.Debug("transformation added", "id", d.ID, "source", from, "target", to, "file", d.FileName)
	g.hooks.OnTransformationAdded(ctx, d.ID, from, to)
	return nil
}

// ensureNode creates an inactive node for key if it does not exist yet.
func (g *Graph) ensureNode(ctx context.Context, key string) error {
	_, err := g.store.Node(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return storeErr(err, "read model %s", key)
	}
	if err := g.store.PutNode(ctx, store.Node{Key: key, Active: false}); err != nil {
		return storeErr(err, "create model %s", key)
	}
	return nil
}

// simpleConnections joins each target field list with commas.
func simpleConnections(conns map[string][]string) map[string]string {
	if len(conns) == 0 {
		return nil
	}
	out := make(map[string]string, len(conns))
	for src, targets := range conns {
		out[src] = strings.Join(targets, ",")
	}
	return out
}

// RemoveTransformation removes one edge between d's source and target.
//
// With a non-empty d.ID the edge with that id is removed. With an empty id
// the first system-generated edge between the two models is removed. Nothing
// happens when no edge matches.
func (g *Graph) RemoveTransformation(ctx context.Context, d *model.TransformationDescription) error {
	if d == nil {
		return mgerrors.New(mgerrors.ErrCodeInvalidInput, "transformation description is nil")
	}
	from, to := d.Source.Key(), d.Target.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	edges, err := g.store.EdgesBetween(ctx, from, to)
	if err != nil {
		return storeErr(err, "list transformations %s -> %s", from, to)
	}
	idx := slices.IndexFunc(edges, func(e store.Edge) bool {
		if d.ID == "" {
			return model.IsInternalID(e.ID)
		}
		return e.ID == d.ID
	})
	if idx < 0 {
		g.logger.Debug("no transformation to remove", "id", d.ID, "source", from, "target", to)
		return nil
	}

	id := edges[idx].ID
	if err := g.store.RemoveEdge(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return storeErr(err, "remove transformation %s", id)
	}
	delete(g.descriptions, id)

	g.logger.Debug("transformation removed", "id", id, "source", from, "target", to)
	g.hooks.OnTransformationRemoved(ctx, id, from, to)
	return nil
}

// TransformationsPerFileName returns copies of the descriptions loaded from
// the given file. The order is not specified.
func (g *Graph) TransformationsPerFileName(ctx context.Context, fileName string) ([]*model.TransformationDescription, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges, err := g.store.EdgesByFile(ctx, fileName)
	if err != nil {
		return nil, storeErr(err, "list transformations of %s", fileName)
	}
	return g.describe(edges), nil
}

// describe maps edges to copies of their descriptions. Edges persisted by an
// earlier process have no description in memory; they are described by
// their id, endpoints and file name only.
func (g *Graph) describe(edges []store.Edge) []*model.TransformationDescription {
	result := make([]*model.TransformationDescription, 0, len(edges))
	for _, e := range edges {
		if d, ok := g.descriptions[e.ID]; ok {
			result = append(result, d.Clone())
			continue
		}
		result = append(result, &model.TransformationDescription{
			ID:       e.ID,
			Source:   modelFromKey(e.From),
			Target:   modelFromKey(e.To),
			FileName: e.FileName,
		})
	}
	return result
}

func modelFromKey(key string) model.ModelDescription {
	if m, err := model.ParseModel(key); err == nil {
		return m
	}
	return model.ModelDescription{Name: key}
}

// Transformation returns a copy of the description with the given id.
func (g *Graph) Transformation(id string) (*model.TransformationDescription, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	d, ok := g.descriptions[id]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Clean removes all models and transformations. The id counter keeps its
// value so ids are never reused within a process.
func (g *Graph) Clean(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Clear(ctx); err != nil {
		return storeErr(err, "clean graph")
	}
	g.descriptions = make(map[string]*model.TransformationDescription)
	g.logger.Debug("graph cleaned")
	return nil
}

// Snapshot is a point-in-time copy of the graph for export.
type Snapshot struct {
	Nodes           []store.Node                       `json:"nodes"`
	Edges           []store.Edge                       `json:"edges"`
	Transformations []*model.TransformationDescription `json:"transformations,omitempty"`
}

// Snapshot returns the nodes and edges in insertion order together with the
// descriptions behind the edges.
func (g *Graph) Snapshot(ctx context.Context) (Snapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes, err := g.store.Nodes(ctx)
	if err != nil {
		return Snapshot{}, storeErr(err, "list models")
	}
	edges, err := g.store.Edges(ctx)
	if err != nil {
		return Snapshot{}, storeErr(err, "list transformations")
	}
	return Snapshot{
		Nodes:           nodes,
		Edges:           edges,
		Transformations: g.describe(edges),
	}, nil
}

// ActiveModels returns the sorted keys of all active models.
func (s Snapshot) ActiveModels() []string {
	var keys []string
	for _, n := range s.Nodes {
		if n.Active {
			keys = append(keys, n.Key)
		}
	}
	slices.Sort(keys)
	return keys
}

// FileNames returns the sorted distinct origin file names of the edges.
func (s Snapshot) FileNames() []string {
	set := make(map[string]struct{})
	for _, e := range s.Edges {
		if e.FileName != "" {
			set[e.FileName] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}
