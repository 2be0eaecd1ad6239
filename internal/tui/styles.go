package tui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89DCEB"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#CBA6F7"))

	LabelStyle = lipgloss.NewStyle().Bold(true)

	RunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))

	SuspendedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))

	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))

	PathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))

	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))

	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89DCEB")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#89DCEB")).
			Padding(0, 2)

	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	midStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	emptyBar  = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

// LoadStyle picks green, yellow or red for a percentage
func LoadStyle(percent float64) lipgloss.Style {
	switch {
	case percent < 50:
		return lowStyle
	case percent < 75:
		return midStyle
	default:
		return highStyle
	}
}
