package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the dashboard chrome. Series colors come from the
// metrics registry palette, not from here.
const (
	colorPrimary = lipgloss.Color("#3399FF") // Blue
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorDanger  = lipgloss.Color("#EF4444") // Red
	colorBg      = lipgloss.Color("#1C1C28") // Dark bg
)

// Styles used throughout the TUI.
var (
	styleActiveTab   lipgloss.Style
	styleInactiveTab lipgloss.Style
	styleHeader      lipgloss.Style
	styleFooter      lipgloss.Style
	styleContent     lipgloss.Style
	styleErr         lipgloss.Style
)

func init() {
	styleActiveTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorPrimary).
		Padding(0, 2)

	styleInactiveTab = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	styleHeader = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(colorMuted)

	styleFooter = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleContent = lipgloss.NewStyle().
		Background(colorBg)

	styleErr = lipgloss.NewStyle().
		Foreground(colorDanger)
}
