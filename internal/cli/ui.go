package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorLink   = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Exported styles, shared with the picker.
var (
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleLink  = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue = lipgloss.NewStyle().Foreground(colorText)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorLink)
	styleHeader  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(10)
)

// kindStyles colors diagram kinds in tables and status lines.
var kindStyles = map[string]lipgloss.Style{
	"sequence":  lipgloss.NewStyle().Foreground(colorAccent),
	"flowchart": lipgloss.NewStyle().Foreground(colorOK),
	"class":     lipgloss.NewStyle().Foreground(colorLink),
	"generic":   lipgloss.NewStyle().Foreground(colorMuted),
}

// kindLabel renders a diagram kind in its table color.
func kindLabel(kind string) string {
	if s, ok := kindStyles[kind]; ok {
		return s.Render(kind)
	}
	return kind
}

// printer writes styled status lines for humans. Machine-readable output
// (--print, convert, decode) bypasses it.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(icon, msg string) {
	fmt.Fprintln(p.w, icon+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK.Render("✓"), fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	p.line(styleFail.Render("✗"), fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	p.line(styleWarn.Render("!"), styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleMuted.Render("›"), fmt.Sprintf(format, args...))
}

// file prints a written file, indented under the preceding status line.
func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func (p printer) field(label, value string) {
	fmt.Fprintln(p.w, "  "+styleLabel.Render(label)+StyleValue.Render(value))
}

func (p printer) link(url string) {
	fmt.Fprintln(p.w, "  "+styleLabel.Render("URL")+StyleLink.Render(url))
}

// hint suggests a follow-up command.
func (p printer) hint(description, cmd string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
