// Package pkg provides the libraries behind modelgraph, a registry of data
// models and the transformations between them.
//
// # Overview
//
// Data models ("name:version") are the nodes of a directed graph and
// transformation descriptions are its edges. Given a source and a target
// model, modelgraph finds a chain of transformations that converts one into
// the other, optionally forced through transformations with given ids.
//
// The pkg directory is organized into these areas:
//
//  1. [model] - Model and transformation description types
//  2. [graph] - The model graph and its path search
//  3. [store] - Node and edge storage (memory, Redis)
//  4. [engine] - Transformation files in, path queries out
//  5. [registry] - Per-source model registration
//  6. [io] - XML, TOML and JSON transformation files; JSON export
//  7. [render] - Graphviz DOT, SVG, PNG and PDF output
//
// # Data Flow
//
//	Transformation files (.xml/.toml/.json)
//	         ↓
//	    [io] package (parse descriptions)
//	         ↓
//	    [engine] package (load, replace per file)
//	         ↓
//	    [graph] package (nodes, edges, path search)  ←  [registry] (active models)
//	         ↓
//	    path / JSON / DOT / SVG output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/modelgraph/pkg/engine"
//	    "github.com/matzehuels/modelgraph/pkg/graph"
//	    "github.com/matzehuels/modelgraph/pkg/model"
//	    "github.com/matzehuels/modelgraph/pkg/registry"
//	)
//
//	g := graph.New()
//	defer g.Close()
//
//	reg := registry.New(g)
//	_, _ = reg.AddSource(ctx, "app", []model.ModelDescription{contact, person})
//
//	eng := engine.New(g)
//	_, _ = eng.LoadFiles(ctx, "transformations/")
//
//	path, err := eng.TransformationPath(ctx, contact, person, nil)
//
// # Supporting Packages
//
// [config] loads TOML configuration with environment overrides. [events]
// publishes graph changes to NATS. [observability] defines hooks, with a
// Prometheus implementation in observability/promhooks. [errors] carries
// coded errors shared by every package. [buildinfo] reports the version.
//
// [model]: github.com/matzehuels/modelgraph/pkg/model
// [graph]: github.com/matzehuels/modelgraph/pkg/graph
// [store]: github.com/matzehuels/modelgraph/pkg/store
// [engine]: github.com/matzehuels/modelgraph/pkg/engine
// [registry]: github.com/matzehuels/modelgraph/pkg/registry
// [io]: github.com/matzehuels/modelgraph/pkg/io
// [render]: github.com/matzehuels/modelgraph/pkg/render
// [config]: github.com/matzehuels/modelgraph/pkg/config
// [events]: github.com/matzehuels/modelgraph/pkg/events
// [observability]: github.com/matzehuels/modelgraph/pkg/observability
// [errors]: github.com/matzehuels/modelgraph/pkg/errors
// [buildinfo]: github.com/matzehuels/modelgraph/pkg/buildinfo
package pkg
