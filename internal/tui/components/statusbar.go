package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/navtools/go-oem7/internal/tui/colors"
	"github.com/navtools/go-oem7/internal/tui/styles"
)

// SentenceMsg carries one decoded line from the receiver into the TUI
type SentenceMsg struct {
	Time time.Time
	Text string
}

// StreamErrorMsg reports that the streaming session ended with an error
type StreamErrorMsg struct {
	Err error
}

type StatusBar struct {
	portPath  string
	baud      int
	status    string
	err       error
	width     int
	sentences int
	filtered  bool
}

func NewStatusBar(portPath string, baud int) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		baud:     baud,
		status:   "Streaming",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetPaused(paused bool) {
	if sb.err != nil {
		return
	}
	if paused {
		sb.status = "Paused"
	} else {
		sb.status = "Streaming"
	}
}

func (sb *StatusBar) SetError(err error) {
	sb.err = err
	sb.status = "Disconnected"
}

func (sb *StatusBar) SetFiltered(filtered bool) {
	sb.filtered = filtered
}

func (sb *StatusBar) CountSentence() {
	sb.sentences++
}

func (sb *StatusBar) ResetCount() {
	sb.sentences = 0
}

func (sb *StatusBar) View() string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	port := styles.StatusBarAccentStyle.Render(sb.portPath)

	var stateStyle lipgloss.Style
	switch {
	case sb.err != nil:
		stateStyle = styles.StatusErrorStyle
	case sb.status == "Paused":
		stateStyle = styles.StatusPausedStyle
	default:
		stateStyle = styles.StatusStreamingStyle
	}
	state := stateStyle.Padding(0, 1).Render(sb.status)

	mode := ""
	if sb.filtered {
		modeStyle := lipgloss.NewStyle().
			Foreground(colors.Peach).
			Padding(0, 1)
		mode = modeStyle.Render("NMEA only")
	}

	left := lipgloss.JoinHorizontal(lipgloss.Left, port, state, mode)

	baudInfo := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("%d baud", sb.baud))
	count := styles.StatusBarCountStyle.Render(fmt.Sprintf("%d sentences", sb.sentences))
	right := lipgloss.JoinHorizontal(lipgloss.Left, baudInfo, count)

	spacerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	content := lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right)
	return styles.StatusBarStyle.Width(width).Render(content)
}
