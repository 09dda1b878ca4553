package dash

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#00CC33")
	colorDim    = lipgloss.Color("#4A4A4A")
	colorUp     = lipgloss.Color("#00FFAA")
	colorDown   = lipgloss.Color("#FF3300")
	colorButton = lipgloss.Color("#FFCC00")
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Bold(true)

	styleIdle   = lipgloss.NewStyle().Foreground(colorDim)
	styleUp     = lipgloss.NewStyle().Foreground(colorUp).Bold(true)
	styleDown   = lipgloss.NewStyle().Foreground(colorDown).Bold(true)
	styleButton = lipgloss.NewStyle().Foreground(colorButton).Bold(true)

	styleHelp = lipgloss.NewStyle().Foreground(colorDim)
)

func stateStyle(state string) lipgloss.Style {
	switch state {
	case "exceeded-up":
		return styleUp
	case "exceeded-down":
		return styleDown
	default:
		return styleIdle
	}
}
