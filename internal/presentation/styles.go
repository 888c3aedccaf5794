package presentation

import "github.com/charmbracelet/lipgloss"

var (
	textMutedColor     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#696969"}
	textSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	statusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	statusWarningColor = lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FECA57"}
	statusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(textMutedColor)
	pathStyle    = lipgloss.NewStyle().Foreground(textSecondaryColor)
	successStyle = lipgloss.NewStyle().Foreground(statusSuccessColor)
	warningStyle = lipgloss.NewStyle().Foreground(statusWarningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(statusErrorColor)
	detailStyle  = lipgloss.NewStyle().PaddingLeft(2)
)
