package store

import (
	"context"
	"slices"
)

// MemoryStore is an in-memory [Store] built on adjacency lists.
//
// The zero value is not usable - use NewMemoryStore. MemoryStore is not safe
// for concurrent use without external synchronization.
type MemoryStore struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]*Edge
	edgeOrder []string
	outgoing  map[string][]string // nodeKey -> outgoing edge IDs
	files     map[string][]string // fileName -> edge IDs
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		outgoing: make(map[string][]string),
		files:    make(map[string][]string),
	}
}

// Node returns a copy of the node with the given key.
func (s *MemoryStore) Node(_ context.Context, key string) (Node, error) {
	n, ok := s.nodes[key]
	if !ok {
		return Node{}, ErrNotFound
	}
	return *n, nil
}

// PutNode inserts n, or updates the Active flag of an existing node.
// Returns ErrInvalidKey if the key is empty.
func (s *MemoryStore) PutNode(_ context.Context, n Node) error {
	if n.Key == "" {
		return ErrInvalidKey
	}
	if existing, ok := s.nodes[n.Key]; ok {
		existing.Active = n.Active
		return nil
	}
	node := n
	s.nodes[n.Key] = &node
	s.nodeOrder = append(s.nodeOrder, n.Key)
	return nil
}

// AddEdge appends e to the adjacency list of its source node.
// Multiple edges between the same nodes are allowed as long as their IDs differ.
func (s *MemoryStore) AddEdge(_ context.Context, e Edge) error {
	if e.ID == "" {
		return ErrInvalidKey
	}
	if _, exists := s.edges[e.ID]; exists {
		return ErrDuplicateEdge
	}
	if _, ok := s.nodes[e.From]; !ok {
		return ErrUnknownEndpoint
	}
	if _, ok := s.nodes[e.To]; !ok {
		return ErrUnknownEndpoint
	}
	edge := e.Clone()
	s.edges[e.ID] = &edge
	s.edgeOrder = append(s.edgeOrder, e.ID)
	s.outgoing[e.From] = append(s.outgoing[e.From], e.ID)
	if e.FileName != "" {
		s.files[e.FileName] = append(s.files[e.FileName], e.ID)
	}
	return nil
}

// RemoveEdge deletes the edge and drops it from every index.
func (s *MemoryStore) RemoveEdge(_ context.Context, id string) error {
	e, ok := s.edges[id]
	if !ok {
		return ErrNotFound
	}
	match := func(x string) bool { return x == id }
	delete(s.edges, id)
	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, match)
	s.outgoing[e.From] = slices.DeleteFunc(s.outgoing[e.From], match)
	if e.FileName != "" {
		s.files[e.FileName] = slices.DeleteFunc(s.files[e.FileName], match)
		if len(s.files[e.FileName]) == 0 {
			delete(s.files, e.FileName)
		}
	}
	return nil
}

// Edge returns a copy of the edge with the given ID.
func (s *MemoryStore) Edge(_ context.Context, id string) (Edge, error) {
	e, ok := s.edges[id]
	if !ok {
		return Edge{}, ErrNotFound
	}
	return e.Clone(), nil
}

// EdgesBetween returns copies of the edges from -> to in insertion order.
// Returns nil if there are none or either node doesn't exist.
func (s *MemoryStore) EdgesBetween(_ context.Context, from, to string) ([]Edge, error) {
	var result []Edge
	for _, id := range s.outgoing[from] {
		if e := s.edges[id]; e.To == to {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

// Neighbors returns the distinct successors of key, ordered by the first
// edge that reaches each of them.
func (s *MemoryStore) Neighbors(_ context.Context, key string) ([]Node, error) {
	seen := make(map[string]bool)
	var result []Node
	for _, id := range s.outgoing[key] {
		to := s.edges[id].To
		if seen[to] {
			continue
		}
		seen[to] = true
		result = append(result, *s.nodes[to])
	}
	return result, nil
}

// EdgesByFile returns copies of the edges loaded from fileName.
func (s *MemoryStore) EdgesByFile(_ context.Context, fileName string) ([]Edge, error) {
	ids := s.files[fileName]
	result := make([]Edge, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.edges[id].Clone())
	}
	return result, nil
}

// Nodes returns copies of all nodes in insertion order.
func (s *MemoryStore) Nodes(_ context.Context) ([]Node, error) {
	result := make([]Node, len(s.nodeOrder))
	for i, key := range s.nodeOrder {
		result[i] = *s.nodes[key]
	}
	return result, nil
}

// Edges returns copies of all edges in insertion order.
func (s *MemoryStore) Edges(_ context.Context) ([]Edge, error) {
	result := make([]Edge, len(s.edgeOrder))
	for i, id := range s.edgeOrder {
		result[i] = s.edges[id].Clone()
	}
	return result, nil
}

// Clear removes all nodes and edges.
func (s *MemoryStore) Clear(_ context.Context) error {
	*s = *NewMemoryStore()
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
