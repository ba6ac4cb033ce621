package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tickerbrief/types"
)

// Terminal palette. Sentiment follows market convention: green bullish,
// red bearish, grey neutral.
const (
	colorAccent  = "#00A8E8"
	colorBullish = "#04B575"
	colorBearish = "#E84545"
	colorNeutral = "#8A8A8A"
	colorMuted   = "#626262"
	colorAlert   = "#FF5555"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginTop(1).
			MarginBottom(1)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAlert))

	completeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)

	briefBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(colorAccent)).
			Padding(1, 2)
)

// sentimentStyle colors the brief's sentiment word.
func sentimentStyle(sentiment string) lipgloss.Style {
	switch sentiment {
	case types.SentimentBullish:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorBullish))
	case types.SentimentBearish:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorBearish))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorNeutral))
	}
}
