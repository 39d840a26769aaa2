package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
	subtle = lipgloss.AdaptiveColor{Light: "250", Dark: "238"}

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	barStyle       = lipgloss.NewStyle().Faint(true)
	onStyle        = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "114"})
	offStyle       = lipgloss.NewStyle().Faint(true)
	statusStyle    = lipgloss.NewStyle().Italic(true).Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	bandStyle      = lipgloss.NewStyle().Faint(true).Italic(true)
	watermarkStyle = lipgloss.NewStyle().Faint(true).Foreground(subtle).Align(lipgloss.Center)
	cursorStyle    = lipgloss.NewStyle().Reverse(true)

	pageStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle)
	currentPageStyle = pageStyle.BorderForeground(accent)

	tickActive   = lipgloss.NewStyle().Foreground(accent)
	tickInactive = lipgloss.NewStyle().Faint(true)
	markerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "166", Dark: "214"})
)
