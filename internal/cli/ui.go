package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all user-facing output. Tests replace it.
var stdout io.Writer = os.Stdout

// Palette shared by the command output, the meta table and the editor.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// marker is the leading glyph of a one-line status message.
type marker struct {
	glyph string
	style lipgloss.Style
}

var (
	markSuccess = marker{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = marker{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = marker{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	markInfo    = marker{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (mk marker) println(msg string) {
	fmt.Fprintln(stdout, mk.style.Render(mk.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { markSuccess.println(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { markError.println(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { markInfo.println(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	markWarning.println(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under a status message.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a file that was written.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarises a compiled map, e.g.
// "3 elements · 2 links · 1 flows · cached".
func printStats(elements, links, flows int, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d elements", elements)),
		StyleDim.Render(fmt.Sprintf("%d links", links)),
	}
	if flows > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d flows", flows)))
	}
	if cached {
		parts = append(parts, markSuccess.style.Render("cached"))
	} else {
		parts = append(parts, markInfo.style.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
