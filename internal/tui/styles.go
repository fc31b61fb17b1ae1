package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed     = lipgloss.Color("#ff5555")
	colorGreen   = lipgloss.Color("#50fa7b")
	colorYellow  = lipgloss.Color("#f1fa8c")
	colorBlue    = lipgloss.Color("#8be9fd")
	colorPurple  = lipgloss.Color("#bd93f9")
	colorDim     = lipgloss.Color("#6272a4")
	colorBgLight = lipgloss.Color("#343746")
	colorFg      = lipgloss.Color("#f8f8f2")
	colorBorder  = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Change list styles
	changeListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	changeSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorBorder).
				Bold(true)

	changeAllowedStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	changeEscalatedStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	changeBlockedStyle = lipgloss.NewStyle().
				Foreground(colorRed)

	// Detail view styles
	detailViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	decisionAllowStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	decisionEscalateStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	decisionBlockStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	reasonStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	markerStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
