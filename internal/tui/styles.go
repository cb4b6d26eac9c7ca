package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const InputWidth = 48

// Dracula-ish palette.
var (
	ColorPrimary   = lipgloss.Color("#bd93f9")
	ColorSecondary = lipgloss.Color("#8be9fd")
	ColorSuccess   = lipgloss.Color("#50fa7b")
	ColorWarning   = lipgloss.Color("#f1fa8c")
	ColorError     = lipgloss.Color("#ff5555")
	ColorMuted     = lipgloss.Color("#6272a4")
	ColorText      = lipgloss.Color("#f8f8f2")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	AddrStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorMuted).
				Bold(true)

	QueuedStyle      = lipgloss.NewStyle().Foreground(ColorWarning)
	DownloadingStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	CompletedStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	FailedStyle      = lipgloss.NewStyle().Foreground(ColorError)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

func init() {
	// Fall back to a readable foreground on light terminals.
	if !termenv.HasDarkBackground() {
		ColorText = lipgloss.Color("#282a36")
		SelectedRowStyle = SelectedRowStyle.Foreground(ColorText)
	}
}
