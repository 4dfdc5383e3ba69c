package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F2F3F5")).
			Background(lipgloss.Color("#5865F2")).
			Padding(0, 1)

	authorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F2F3F5"))
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#949BA4"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#949BA4"))
	deletedStyle   = mutedStyle.Italic(true)
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A8FC")).Underline(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F23F43"))
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0B232"))

	selectedStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#5865F2")).
			PaddingLeft(1)
	itemStyle = lipgloss.NewStyle().PaddingLeft(2)
)
