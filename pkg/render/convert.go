package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// rsvgBinary is the librsvg command line converter.
var rsvgBinary = "rsvg-convert"

// ToPDF converts SVG to PDF with rsvg-convert.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

// ToPNG converts SVG to PNG with rsvg-convert, zoomed by scale.
// A scale of zero or less means 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convertSVG(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convertSVG(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeUnsupported, err,
			"%s export needs %s (librsvg2-bin on Linux, librsvg on macOS)", format, rsvgBinary)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "%s: %s", rsvgBinary, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
