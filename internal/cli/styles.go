package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by the report panel, the follow-up wizard and notices.
const (
	colorAccent = lipgloss.Color("31")
	colorMuted  = lipgloss.Color("244")
	colorBorder = lipgloss.Color("238")
	colorOK     = lipgloss.Color("42")
	colorInfo   = lipgloss.Color("75")
	colorWarn   = lipgloss.Color("214")
	colorError  = lipgloss.Color("203")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorAccent).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(colorOK)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	helpStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// styleForSeverity colours a reminder tag by its severity.
func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case "medium":
		return lipgloss.NewStyle().Foreground(colorWarn)
	case "low":
		return lipgloss.NewStyle().Foreground(colorInfo)
	default:
		return lipgloss.NewStyle()
	}
}
