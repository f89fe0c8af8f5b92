package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/navtools/go-oem7/internal/tui/colors"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Status styles
	StatusStreamingStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusPausedStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Sentence rendering
	TimestampStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)

	SentenceStyle = lipgloss.NewStyle().
			Foreground(colors.Text)

	FilteredStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Italic(true)

	// Status bar segments
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Background(colors.Surface0)

	StatusBarAccentStyle = lipgloss.NewStyle().
				Foreground(colors.Base).
				Background(colors.Blue).
				Padding(0, 1)

	StatusBarCountStyle = lipgloss.NewStyle().
				Foreground(colors.Base).
				Background(colors.Teal).
				Padding(0, 1)
)
