package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Quiver arrows
	ArrowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))

	// Trajectory overlay
	PathStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	// Header with decorative line
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	OKStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	WarnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))

	// Key hint style
	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// Field is one "label value" line.
func Field(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// Fieldf formats the value.
func Fieldf(label, format string, args ...any) string {
	return Field(label, fmt.Sprintf(format, args...))
}

// Section renders a header followed by its lines.
func Section(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(title) + "\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	return b.String()
}
