// Package styles holds the terminal styles used to print completion lists.
package styles

import (
	"github.com/atinylittleshell/gshcomplete/internal/completion"
	"github.com/charmbracelet/lipgloss"
)

// ANSI colors
const (
	ColorCyan    = lipgloss.Color("12")
	ColorYellow  = lipgloss.Color("11")
	ColorGreen   = lipgloss.Color("10")
	ColorRed     = lipgloss.Color("9")
	ColorMagenta = lipgloss.Color("13")
	ColorGray    = lipgloss.Color("8")
)

var (
	// LabelStyle is the default style of a completion label.
	LabelStyle = lipgloss.NewStyle()

	// DetailStyle is used for the detail column.
	DetailStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// KindStyle is used for the kind column.
	KindStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	kindStyles = map[completion.Kind]lipgloss.Style{
		completion.KindFolder:           lipgloss.NewStyle().Foreground(ColorCyan).Bold(true),
		completion.KindMethod:           lipgloss.NewStyle().Foreground(ColorGreen),
		completion.KindAlias:            lipgloss.NewStyle().Foreground(ColorMagenta),
		completion.KindArgument:         lipgloss.NewStyle().Foreground(ColorYellow),
		completion.KindFlag:             lipgloss.NewStyle().Foreground(ColorYellow),
		completion.KindOption:           lipgloss.NewStyle().Foreground(ColorYellow),
		completion.KindInlineSuggestion: lipgloss.NewStyle().Foreground(ColorGray),
	}
)

// ForKind returns the label style of a completion kind.
func ForKind(kind completion.Kind) lipgloss.Style {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return LabelStyle
}
