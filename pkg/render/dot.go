package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/modelgraph/pkg/graph"
	"github.com/matzehuels/modelgraph/pkg/store"
)

// Options configures model graph rendering.
type Options struct {
	// Detailed adds the property connections of every transformation to
	// its edge label. When false, only the transformation id is shown.
	Detailed bool

	// Highlight lists transformation ids drawn in bold, typically the
	// result of a path search.
	Highlight []string
}

// ToDOT converts a graph snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Inactive models are drawn with dashed outlines and grey fill. Nodes and
// edges keep the snapshot's insertion order, so the output is stable.
func ToDOT(s graph.Snapshot, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	for _, attr := range graphAttrs {
		fmt.Fprintf(&b, "  %s;\n", attr)
	}

	b.WriteString("\n")
	for _, n := range s.Nodes {
		fmt.Fprintf(&b, "  %q [%s];\n", n.Key, strings.Join(nodeAttrs(n), ", "))
	}

	b.WriteString("\n")
	for _, e := range s.Edges {
		attrs := edgeAttrs(fmtLabel(e, opts.Detailed), slices.Contains(opts.Highlight, e.ID))
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	b.WriteString("}\n")
	return b.String()
}

// graphAttrs are the defaults written at the top of every graph.
var graphAttrs = []string{
	"rankdir=LR",
	`bgcolor="transparent"`,
	`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"]`,
	"edge [fontsize=10]",
}

func nodeAttrs(n store.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Key)}
	if !n.Active {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=dimgrey")
	}
	return attrs
}

func fmtLabel(e store.Edge, detailed bool) string {
	if !detailed || len(e.Connections) == 0 {
		return e.ID
	}
	parts := make([]string, 0, len(e.Connections))
	for _, src := range slices.Sorted(maps.Keys(e.Connections)) {
		parts = append(parts, src+" -> "+e.Connections[src])
	}
	return e.ID + "\n" + strings.Join(parts, "\n")
}

func edgeAttrs(label string, highlight bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if highlight {
		attrs = append(attrs, "penwidth=2.5", "color=firebrick", "fontcolor=firebrick")
	}
	return attrs
}
