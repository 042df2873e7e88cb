package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/crewdeck/crew/pkg/model"
)

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}

	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	urlBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight).
			Padding(0, 1)

	urlBarFocusedStyle = urlBarStyle.
				BorderForeground(ColorPrimary)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	subtextStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"})

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight).
			Padding(0, 1)

	selectedTabStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Underline(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)
)

// statusColor maps a task status to its display color.
func statusColor(s model.TaskStatus) lipgloss.AdaptiveColor {
	switch s {
	case model.TaskInProgress:
		return ColorInfo
	case model.TaskDone:
		return ColorSuccess
	default:
		return ColorWarning
	}
}

// statusBadge renders a task status as a colored badge.
func statusBadge(s model.TaskStatus) string {
	label := string(s)
	switch s {
	case model.TaskPool:
		label = "pool"
	case model.TaskInProgress:
		label = "in progress"
	case model.TaskDone:
		label = "done"
	}
	return badgeStyle.Background(statusColor(s)).Render(label)
}
