package graph

import (
	"context"
	"slices"
	"time"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/model"
	"github.com/matzehuels/modelgraph/pkg/store"
)

// TransformationPath returns the descriptions that convert source into
// target, in application order.
//
// If required is non-empty, the path must contain a transformation with each
// of the given ids. When no path exists the error is a
// [*mgerrors.NoPathError] with code NO_PATH_FOUND.
func (g *Graph) TransformationPath(ctx context.Context, source, target model.ModelDescription, required []string) ([]*model.TransformationDescription, error) {
	start := time.Now()
	path, err := g.transformationPath(ctx, source, target, required)
	g.hooks.OnPathSearch(ctx, source.Key(), target.Key(), len(path), time.Since(start), err)
	return path, err
}

func (g *Graph) transformationPath(ctx context.Context, source, target model.ModelDescription, required []string) ([]*model.TransformationDescription, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges, ok, err := g.findPath(ctx, source.Key(), target.Key(), required)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.logger.Debug("no transformation path", "source", source.Key(), "target", target.Key(), "required", required)
		return nil, &mgerrors.NoPathError{
			Source:   source.Key(),
			Target:   target.Key(),
			Required: slices.Clone(required),
		}
	}
	return g.describe(edges), nil
}

// IsTransformationPossible reports whether a path from source to target
// exists that satisfies required. Any search failure counts as no path.
func (g *Graph) IsTransformationPossible(ctx context.Context, source, target model.ModelDescription, required []string) bool {
	start := time.Now()

	g.mu.RLock()
	edges, ok, err := g.findPath(ctx, source.Key(), target.Key(), required)
	g.mu.RUnlock()

	if err == nil && !ok {
		err = &mgerrors.NoPathError{Source: source.Key(), Target: target.Key(), Required: slices.Clone(required)}
	}
	g.hooks.OnPathSearch(ctx, source.Key(), target.Key(), len(edges), time.Since(start), err)
	if err != nil && !mgerrors.Is(err, mgerrors.ErrCodeNoPathFound) {
		g.logger.Warn("transformation path search failed", "source", source.Key(), "target", target.Key(), "err", err)
	}
	return ok
}

// findPath runs the depth-first search. The caller must hold g.mu.
// err is only set for storage or context failures.
func (g *Graph) findPath(ctx context.Context, from, to string, required []string) ([]store.Edge, bool, error) {
	nodes, err := g.store.Nodes(ctx)
	if err != nil {
		return nil, false, storeErr(err, "list models")
	}
	s := &pathSearch{
		ctx:      ctx,
		store:    g.store,
		end:      to,
		required: required,
		maxDepth: len(nodes),
	}
	ok, err := s.search(from)
	if err != nil || !ok {
		return nil, false, err
	}
	return s.path, true, nil
}

// pathSearch holds the state of one depth-first search. path is the stack
// of edges traversed from the start node.
type pathSearch struct {
	ctx      context.Context
	store    store.Store
	end      string
	required []string
	maxDepth int
	path     []store.Edge
}

// search extends path from start. Each neighbor is tried in order: inactive
// and already visited neighbors are skipped; a neighbor equal to the end
// completes the path if the required ids are covered; otherwise the search
// continues through the neighbor. On success path holds the result.
func (s *pathSearch) search(start string) (bool, error) {
	if len(s.path) >= s.maxDepth {
		return false, nil
	}
	if err := s.ctx.Err(); err != nil {
		return false, err
	}

	neighbors, err := s.store.Neighbors(s.ctx, start)
	if err != nil {
		return false, storeErr(err, "list neighbors of %s", start)
	}
	for _, n := range neighbors {
		if !n.Active || s.visited(n.Key) {
			continue
		}
		edge, ok, err := s.pickEdge(start, n.Key)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}

		s.path = append(s.path, edge)
		if n.Key == s.end && s.covers() {
			return true, nil
		}
		found, err := s.search(n.Key)
		if err != nil || found {
			return found, err
		}
		s.path = s.path[:len(s.path)-1]
	}
	return false, nil
}

// visited reports whether key is the source of an edge already on the path.
func (s *pathSearch) visited(key string) bool {
	return slices.ContainsFunc(s.path, func(e store.Edge) bool { return e.From == key })
}

// pickEdge returns the edge from -> to whose id is required, or the first
// edge between the two if none is.
func (s *pathSearch) pickEdge(from, to string) (store.Edge, bool, error) {
	edges, err := s.store.EdgesBetween(s.ctx, from, to)
	if err != nil {
		return store.Edge{}, false, storeErr(err, "list transformations %s -> %s", from, to)
	}
	if len(edges) == 0 {
		return store.Edge{}, false, nil
	}
	for _, e := range edges {
		if slices.Contains(s.required, e.ID) {
			return e, true, nil
		}
	}
	return edges[0], true, nil
}

// covers reports whether the path satisfies the required ids. Every edge
// consumes one occurrence of its id, so a repeated required id can never be
// satisfied.
func (s *pathSearch) covers() bool {
	if len(s.required) == 0 {
		return true
	}
	remaining := slices.Clone(s.required)
	for _, e := range s.path {
		if i := slices.Index(remaining, e.ID); i >= 0 {
			remaining = slices.Delete(remaining, i, i+1)
		}
	}
	return len(remaining) == 0
}
