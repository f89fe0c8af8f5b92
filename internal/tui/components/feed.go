package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/navtools/go-oem7/internal/tui/styles"
)

const maxFeedLines = 2000

// Feed is a scrolling view of received sentences, newest at the bottom
type Feed struct {
	viewport viewport.Model
	lines    []string
	paused   bool
}

func NewFeed(width, height int) *Feed {
	vp := viewport.New(width, height)
	return &Feed{
		viewport: vp,
		lines:    make([]string, 0, maxFeedLines),
	}
}

func (f *Feed) SetSize(width, height int) {
	f.viewport.Width = width
	f.viewport.Height = height
	f.refresh()
}

func (f *Feed) SetPaused(paused bool) {
	f.paused = paused
	if !paused {
		f.refresh()
	}
}

func (f *Feed) Paused() bool {
	return f.paused
}

// Add appends a sentence. While paused, lines are still recorded so
// nothing is lost, but the view does not advance.
func (f *Feed) Add(msg SentenceMsg) {
	ts := styles.TimestampStyle.Render(msg.Time.Format("15:04:05.000"))
	line := fmt.Sprintf("%s %s", ts, styles.SentenceStyle.Render(msg.Text))
	f.lines = append(f.lines, line)
	if len(f.lines) > maxFeedLines {
		f.lines = f.lines[len(f.lines)-maxFeedLines:]
	}
	if !f.paused {
		f.refresh()
	}
}

func (f *Feed) Clear() {
	f.lines = f.lines[:0]
	f.viewport.SetContent("")
}

func (f *Feed) refresh() {
	f.viewport.SetContent(strings.Join(f.lines, "\n"))
	f.viewport.GotoBottom()
}

func (f *Feed) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Keep key presses away from the viewport so bindings stay with the model
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return f.viewport.Update(msg)
	default:
		return f.viewport, nil
	}
}

func (f *Feed) View() string {
	return f.viewport.View()
}
