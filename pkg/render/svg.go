package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// RenderSVG lays out a DOT graph with Graphviz and returns it as SVG.
// Invalid DOT is reported with code INVALID_FORMAT.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "parse dot")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "render svg")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders a DOT graph to SVG and converts it with [ToPDF].
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph to SVG and converts it with [ToPNG].
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(ctx, svg, scale)
}

var (
	svgOpenTag = regexp.MustCompile(`<svg[^>]*>`)
	svgViewBox = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the opening svg tag so the viewBox starts at
// the origin and the size is explicit.
func normalizeViewBox(svg []byte) []byte {
	m := svgViewBox.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[3]), 64)
	h, errH := strconv.ParseFloat(string(m[4]), 64)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenTag.ReplaceAll(svg, []byte(tag))
}
