// Package tui provides the terminal chat page.
package tui

import "github.com/charmbracelet/lipgloss"

const sidebarWidth = 34

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorAccent  = lipgloss.Color("#9ece6a")
	colorError   = lipgloss.Color("#f7768e")
	colorText    = lipgloss.Color("#c0caf5")
	colorDim     = lipgloss.Color("#565f89")
	colorBorder  = lipgloss.Color("#3b4261")
)

var (
	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorDim)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	sidebarHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginTop(1)
	sidebarTextStyle    = lipgloss.NewStyle().Foreground(colorText)
	sidebarKeyStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	securityStyle       = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	messagesStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	userTextStyle       = lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2)
	errorTextStyle      = lipgloss.NewStyle().Foreground(colorError).PaddingLeft(2)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	loadingStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	statusBarStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	welcomeStyle   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
)
