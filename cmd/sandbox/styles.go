package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/sandbox-risk/internal/risk"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// SuccessStyle for completed actions.
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

var riskStyles = map[risk.RiskLevel]lipgloss.Style{
	risk.RiskLevelLow:        lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	risk.RiskLevelMedium:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	risk.RiskLevelHigh:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	risk.RiskLevelLiquidated: lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(lipgloss.Color("9")),
}

// FormatSigned colors a rendered amount by the sign of v.
func FormatSigned(v float64, rendered string) string {
	switch {
	case v > 0:
		return gainStyle.Render(rendered)
	case v < 0:
		return lossStyle.Render(rendered)
	default:
		return rendered
	}
}

// FormatRisk renders a risk tier in its color.
func FormatRisk(level risk.RiskLevel) string {
	style, ok := riskStyles[level]
	if !ok {
		return string(level)
	}

	return style.Render(string(level))
}
