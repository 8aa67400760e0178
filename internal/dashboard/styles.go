package dashboard

import (
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#F38BA8")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#45475A"))

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return badStyle
	case domain.PriorityMedium:
		return warnStyle
	case domain.PriorityLow:
		return goodStyle
	default:
		return dimStyle
	}
}

func trainStatusStyle(s string) lipgloss.Style {
	switch s {
	case domain.TrainDelayed:
		return badStyle
	case domain.TrainSlightDelay:
		return warnStyle
	case domain.TrainOnTime:
		return goodStyle
	default:
		return dimStyle
	}
}
