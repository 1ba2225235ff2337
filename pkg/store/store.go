package store

import (
	"context"
	"errors"
	"maps"
)

var (
	// ErrNotFound is returned when a node or edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEdge is returned by [Store.AddEdge] when an edge with the
	// same ID already exists. Edge IDs are unique across the whole store.
	ErrDuplicateEdge = errors.New("duplicate edge ID")

	// ErrInvalidKey is returned when a node key or edge ID is empty.
	ErrInvalidKey = errors.New("key must not be empty")

	// ErrUnknownEndpoint is returned by [Store.AddEdge] when the From or To
	// node has not been stored yet.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")
)

// Node is a model vertex. Key is the model key ("name:version").
type Node struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

// Edge is a transformation between two nodes. Only the identity and the
// lookup attributes live in the store; the full transformation description
// is owned by the graph.
type Edge struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	FileName string `json:"file_name,omitempty"`

	// Connections maps a source field to the comma-separated target fields
	// it flows into.
	Connections map[string]string `json:"connections,omitempty"`
}

// Clone returns a copy of e that shares no maps with it.
func (e Edge) Clone() Edge {
	e.Connections = maps.Clone(e.Connections)
	return e
}

// Store persists the nodes and edges of a model graph.
//
// Implementations return ordered results: [Store.Nodes] in node insertion
// order, [Store.Edges], [Store.EdgesBetween] and [Store.EdgesByFile] in edge
// insertion order, and [Store.Neighbors] in order of the first edge reaching
// each neighbor. The path search relies on this order being stable.
//
// Stores do not need to be safe for concurrent use; the graph serializes
// access.
type Store interface {
	// Node returns the node with the given key, or ErrNotFound.
	Node(ctx context.Context, key string) (Node, error)

	// PutNode inserts the node or overwrites its Active flag.
	PutNode(ctx context.Context, n Node) error

	// AddEdge inserts an edge between two stored nodes. It returns
	// ErrDuplicateEdge if the ID is taken and ErrUnknownEndpoint if either
	// endpoint is missing.
	AddEdge(ctx context.Context, e Edge) error

	// RemoveEdge deletes the edge with the given ID, or returns ErrNotFound.
	RemoveEdge(ctx context.Context, id string) error

	// Edge returns the edge with the given ID, or ErrNotFound.
	Edge(ctx context.Context, id string) (Edge, error)

	// EdgesBetween returns all edges from -> to.
	EdgesBetween(ctx context.Context, from, to string) ([]Edge, error)

	// Neighbors returns the distinct nodes reachable from key over one edge.
	Neighbors(ctx context.Context, key string) ([]Node, error)

	// EdgesByFile returns the edges tagged with the given file name.
	EdgesByFile(ctx context.Context, fileName string) ([]Edge, error)

	// Nodes returns all nodes.
	Nodes(ctx context.Context) ([]Node, error)

	// Edges returns all edges.
	Edges(ctx context.Context) ([]Edge, error)

	// Clear removes every node and edge.
	Clear(ctx context.Context) error

	// Close releases the resources held by the store.
	Close() error
}
