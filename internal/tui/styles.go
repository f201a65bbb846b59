package tui

import "github.com/charmbracelet/lipgloss"

// ------- styling (Lip Gloss) -------
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("25")).Padding(0, 1)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)

	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("25")).Padding(0, 2)
	buttonFocused = buttonStyle.Background(lipgloss.Color("33")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("12"))
)
