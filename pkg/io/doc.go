// Package io reads transformation description files and exports graph
// snapshots as JSON.
//
// # Transformation Files
//
// [ReadFile] picks a decoder by file extension:
//
//   - .xml, .transformation: [ReadXML], the transformation XML format
//   - .toml: [ReadTOML]
//   - .json: [ReadJSON], an array of descriptions as written by [WriteDescriptions]
//
// Models are written as "name:version". Every operation names one of the
// operations in package model; "value" is the only one without source
// fields. All decoders report malformed input with code INVALID_FORMAT.
//
// Descriptions read from a file carry the file's path in FileName. The
// transformation engine uses it to replace everything a file contributed
// when the file is loaded again.
//
// Use [ExpandPaths] to turn directories into the transformation files they
// contain.
//
// # Export
//
// Use [ExportJSON] to write a graph snapshot to a file, or [WriteJSON] to
// write to any io.Writer:
//
//	snap, _ := g.Snapshot(ctx)
//	err := io.ExportJSON(snap, "graph.json", false)
//
// The export lists models with their active state and transformations with
// their endpoints, origin file and property connections, in insertion order.
package io
