package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleActive   = lipgloss.NewStyle().Foreground(colorGreen)
	styleInactive = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Printer
// =============================================================================

// printer writes command output. Styles are applied only when the output
// is a color-capable terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, color: shouldUseColor(w)}
}

// shouldUseColor reports whether ANSI colors should be written to w.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR and TTY detection.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(icon string, iconStyle lipgloss.Style, msg string) {
	fmt.Fprintln(p.w, p.style(iconStyle, icon)+" "+msg)
}

func (p *printer) success(format string, args ...any) {
	p.line(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func (p *printer) failure(format string, args ...any) {
	p.line(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func (p *printer) warning(format string, args ...any) {
	p.line(iconWarning, styleIconWarning, p.style(styleWarning, fmt.Sprintf(format, args...)))
}

func (p *printer) info(format string, args ...any) {
	p.line(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p *printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+p.style(styleDim, fmt.Sprintf(format, args...)))
}

// file prints an output file line.
func (p *printer) file(path string) {
	fmt.Fprintln(p.w, "  "+p.style(styleDim, iconArrow)+" "+p.style(styleValue, path))
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.style(styleTitle, text))
}

// keyValue prints a labeled value.
func (p *printer) keyValue(key, value string) {
	fmt.Fprintln(p.w, p.style(styleKey, fmt.Sprintf("%-12s", key))+" "+p.style(styleValue, value))
}
