// Package graph provides the model-transformation graph.
//
// # Overview
//
// Registered data models are the nodes of the graph and transformation
// descriptions are its directed edges. Given a source and a target model the
// graph finds a chain of transformations that converts one into the other.
//
// Nodes carry an active flag. [Graph.AddModel] activates a model and
// [Graph.RemoveModel] deactivates it; nodes are never deleted, so edges that
// point at an unregistered model survive until the model comes back. Nodes
// referenced only as transformation endpoints are created inactive.
//
// # Basic Usage
//
//	g := graph.New()
//	defer g.Close()
//
//	_ = g.AddModel(ctx, contactV1)
//	_ = g.AddModel(ctx, personV1)
//	_ = g.AddTransformation(ctx, model.NewTransformation(contactV1, personV1))
//
//	path, err := g.TransformationPath(ctx, contactV1, personV1, nil)
//
// # Path Search
//
// [Graph.TransformationPath] runs a depth-first search over the successors of
// each node in edge insertion order. Inactive models and models already on
// the path are skipped. Between two models the edge whose id is listed in the
// required ids is preferred, otherwise the first edge is taken. A path that
// reaches the target is accepted only if it contains every required id; if
// it does not, the search continues through the target. The first accepted
// path is returned.
//
// The start model's own active flag is not checked. Searching from a model
// to itself needs a cycle; since the start is the source of the first edge,
// only a self-loop can close it.
//
// # Identifiers
//
// Transformations added without an id receive one of the form
// "EKBInternal-<n>", with n counting up from 1 for each Graph. Removing a
// transformation without an id removes the first such edge between its
// models.
//
// # Storage
//
// Nodes and edges live in a [store.Store]: [store.MemoryStore] by default,
// or [store.RedisStore] via [WithStore]. The descriptions themselves stay in
// memory.
package graph
