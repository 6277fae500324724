package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#7D56F4")
	subtle = lipgloss.Color("#8A8A8A")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF5F87")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1)

	filterStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	quoteBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2).
			MarginTop(1)

	quoteTextStyle = lipgloss.NewStyle().Italic(true)

	categoryStyle = lipgloss.NewStyle().Foreground(subtle)

	emptyStyle = lipgloss.NewStyle().Foreground(subtle).Italic(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	cursorStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)

	formStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(0, 1).
			MarginTop(1)

	promptStyle = lipgloss.NewStyle().Foreground(red).Bold(true)

	statusStyle = lipgloss.NewStyle().Foreground(green)

	errorStyle = lipgloss.NewStyle().Foreground(red)
)
