// Package render draws the model graph with Graphviz.
//
// Models become boxes and transformations become labelled arrows between
// them. The DOT text is the intermediate format:
//
//	snap, _ := g.Snapshot(ctx)
//	dot := render.ToDOT(snap, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Inactive models, which only exist because a transformation references
// them, are drawn dashed. [Options.Highlight] marks the transformations of
// a path found by [graph.Graph.TransformationPath].
//
// [ToPDF] and [ToPNG] convert SVG with the external rsvg-convert tool
// (from librsvg).
package render
