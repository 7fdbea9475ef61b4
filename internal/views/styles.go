package views

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	selected lipgloss.Style
	inactive lipgloss.Style
	warning  lipgloss.Style
	error    lipgloss.Style
	success  lipgloss.Style
	modal    lipgloss.Style
	footer   lipgloss.Style
	viewed   lipgloss.Style
	resolved lipgloss.Style
}

func defaultStyles() styles {
	var (
		primary  = lipgloss.Color("39")
		warning  = lipgloss.Color("214")
		errColor = lipgloss.Color("196")
		success  = lipgloss.Color("46")
		inactive = lipgloss.Color("240")
	)
	return styles{
		title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),
		header: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(primary).
			Bold(true),
		inactive: lipgloss.NewStyle().Foreground(inactive),
		warning:  lipgloss.NewStyle().Foreground(warning).Bold(true),
		error:    lipgloss.NewStyle().Foreground(errColor).Bold(true),
		success:  lipgloss.NewStyle().Foreground(success),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),
		footer: lipgloss.NewStyle().
			Foreground(inactive).
			MarginTop(1),
		viewed:   lipgloss.NewStyle().Foreground(success),
		resolved: lipgloss.NewStyle().Foreground(inactive).Strikethrough(true),
	}
}

// centered places content in the middle of the terminal, used by the modal
// views.
func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
