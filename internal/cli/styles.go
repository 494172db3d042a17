// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Colors adapt to light and dark terminals.
var (
	brandColor   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	goodColor    = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	cautionColor = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	badColor     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	noteColor    = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#67E8F9"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// Text styles.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(brandColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(goodColor)
	WarningStyle = lipgloss.NewStyle().Foreground(cautionColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(badColor).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(noteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// LabelStyle pads the left column of key/value listings.
	LabelStyle = lipgloss.NewStyle().Width(22).Foreground(mutedColor)

	// BoxStyle frames run and report summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandColor).
			Padding(0, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	SalesIcon   = "📈"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the sales icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(SalesIcon + " " + title)
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	heading := TitleStyle.Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
