package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Minimal color palette
var (
	DimColor    = lipgloss.Color("#6c6c6c")
	TextColor   = lipgloss.Color("#e0e0e0")
	AccentColor = lipgloss.Color("#7aa2f7")
	ErrorColor  = lipgloss.Color("#f7768e")
	ToolColor   = lipgloss.Color("#9ece6a")
	WarnColor   = lipgloss.Color("#e0af68")
	InputAreaBg = lipgloss.Color("#1f2335")
)

// Log entry styles
var (
	UserMessageStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(AccentColor).
				PaddingLeft(1)

	AgentMessageStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	ToolStyle = lipgloss.NewStyle().
			Foreground(ToolColor)

	ConfirmStyle = lipgloss.NewStyle().
			Foreground(WarnColor).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(WarnColor).
			Padding(0, 1)

	SystemStyle = lipgloss.NewStyle().
			Foreground(DimColor).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)
)

// Input, status and footer styles
var (
	InputAreaStyle = lipgloss.NewStyle().
			Background(InputAreaBg).
			Padding(0, 1)

	StatusActiveStyle = lipgloss.NewStyle().Foreground(AccentColor)
	StatusDimStyle    = lipgloss.NewStyle().Foreground(DimColor)
	StatusWarnStyle   = lipgloss.NewStyle().Foreground(WarnColor)
	StatusErrorStyle  = lipgloss.NewStyle().Foreground(ErrorColor)

	FooterStyle        = lipgloss.NewStyle().Foreground(DimColor)
	FooterAppNameStyle = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	FooterModelStyle   = lipgloss.NewStyle().Foreground(TextColor).Padding(0, 1)
	ShortcutKeyStyle   = lipgloss.NewStyle().Foreground(TextColor)
	ShortcutDescStyle  = lipgloss.NewStyle().Foreground(DimColor)
)

const statusDot = "●"
