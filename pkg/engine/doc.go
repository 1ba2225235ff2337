// Package engine manages transformation descriptions on top of the model
// graph.
//
// The engine is the write path for transformations. [Engine.SaveDescription]
// and [Engine.DeleteDescription] change single descriptions;
// [Engine.LoadFile] and [Engine.LoadFiles] read transformation files (see
// package io) and replace whatever an earlier version of the same file
// contributed, so loading a file twice leaves one copy of each
// transformation:
//
//	eng := engine.New(g, engine.WithLogger(logger), engine.WithPublisher(pub))
//	n, err := eng.LoadFiles(ctx, "transformations/")
//
// Every change is published as an [events.Event]. A failing publisher is
// logged at warn level and never fails the operation.
package engine
