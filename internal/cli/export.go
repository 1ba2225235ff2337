package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	mgio "github.com/matzehuels/modelgraph/pkg/io"
	"github.com/matzehuels/modelgraph/pkg/render"
)

// Export formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
	formatPDF  = "pdf"
)

var exportFormats = []string{formatJSON, formatDOT, formatSVG, formatPNG, formatPDF}

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format    string   // output format
	output    string   // output file; stdout when empty
	detailed  bool     // property connections in DOT labels
	steps     bool     // full descriptions in JSON
	highlight []string // transformation ids drawn in bold
	scale     float64  // PNG scale factor
}

// exportCommand creates the export command, which writes the graph as
// JSON or draws it with Graphviz.
func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOpts{format: formatJSON, scale: 2}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the model graph as JSON, DOT, SVG, PNG or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(exportFormats, opts.format) {
				return fmt.Errorf("invalid format %q (want %s)", opts.format, strings.Join(exportFormats, ", "))
			}
			if (opts.format == formatPNG || opts.format == formatPDF) && opts.output == "" {
				return fmt.Errorf("%s export requires --output", opts.format)
			}
			return c.runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show property connections on edges (dot, svg, png, pdf)")
	cmd.Flags().BoolVar(&opts.steps, "steps", false, "include transformation steps (json)")
	cmd.Flags().StringArrayVar(&opts.highlight, "highlight", nil, "highlight a transformation id (repeatable)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts exportOpts) error {
	return c.withStack(ctx, func(s *stack) error {
		prog := newProgress(c.Logger)
		snap, err := s.graph.Snapshot(ctx)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if opts.format == formatJSON {
			if err := mgio.WriteJSON(snap, &buf, opts.steps); err != nil {
				return err
			}
		} else {
			data, err := renderSnapshot(ctx, render.ToDOT(snap, render.Options{
				Detailed:  opts.detailed,
				Highlight: opts.highlight,
			}), opts)
			if err != nil {
				return err
			}
			buf.Write(data)
		}

		if err := writeOutput(c.out, opts.output, buf.Bytes()); err != nil {
			return err
		}
		if opts.output != "" {
			prog.done(fmt.Sprintf("Exported %d models and %d transformations", len(snap.Nodes), len(snap.Edges)))
			newPrinter(c.out).file(opts.output)
		}
		return nil
	})
}

func renderSnapshot(ctx context.Context, dot string, opts exportOpts) ([]byte, error) {
	switch opts.format {
	case formatSVG:
		return render.RenderSVG(ctx, dot)
	case formatPNG:
		return render.RenderPNG(ctx, dot, opts.scale)
	case formatPDF:
		return render.RenderPDF(ctx, dot)
	default:
		return []byte(dot), nil
	}
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
