package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	oem7 "github.com/navtools/go-oem7"
	"github.com/navtools/go-oem7/internal/tui/components"
	"github.com/navtools/go-oem7/internal/tui/keys"
	"github.com/navtools/go-oem7/internal/tui/styles"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream receiver messages in a live TUI",
	Long: `Open a serial port (explicit, or discovered with --detect), optionally
send the initialization sequence, and show the incoming sentences in a
scrolling terminal view with timestamps.

Keys: p pauses, f toggles the sentence filter, c clears, q quits.

Example usage:
  oem7 monitor --port /dev/ttyUSB1
  oem7 monitor --detect
  oem7 monitor --port /dev/ttyUSB0 --baud 9600 --no-init`,
	Run: func(cmd *cobra.Command, args []string) {
		portPath := stringSetting(cmd, "port", "port")
		baud := intSetting(cmd, "baud", "baud")
		timeout := durationSetting(cmd, "timeout", "timeout")
		detect, _ := cmd.Flags().GetBool("detect")
		noInit, _ := cmd.Flags().GetBool("no-init")
		nmeaOnly, _ := cmd.Flags().GetBool("nmea-only")
		extras, _ := cmd.Flags().GetStringArray("extra-command")

		log := newLogger()
		defer log.Sync()

		port, err := acquirePort(portPath, baud, detect, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !noInit {
			proto := oem7.NewProtocol(port, log)
			cmds := oem7.DedupeAdjacent(append(oem7.DefaultInitCommands(), extras...))
			if err := proto.SendSequence(cmds, timeout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				port.Close()
				os.Exit(1)
			}
			port.FlushInput()
		}

		if err := runMonitorTUI(port, nmeaOnly, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringP("port", "p", "/dev/ttyUSB1", "Serial device path")
	monitorCmd.Flags().IntP("baud", "b", 115200, "Baud rate to configure")
	monitorCmd.Flags().DurationP("timeout", "t", 1500*time.Millisecond, "Response timeout per command")
	monitorCmd.Flags().Bool("detect", false, "Discover the device path and baud rate instead of using --port")
	monitorCmd.Flags().Bool("no-init", false, "Skip initialization commands; just stream the port")
	monitorCmd.Flags().Bool("nmea-only", false, "Start with the sentence filter enabled")
	monitorCmd.Flags().StringArray("extra-command", nil, "Additional command to append (can be repeated)")
}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	feed      *components.Feed
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.MonitorKeys

	filtered bool
	ready    bool
	cancel   context.CancelFunc
}

func runMonitorTUI(port *oem7.Port, nmeaOnly bool, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := monitorModel{
		feed:      components.NewFeed(80, 20),
		statusBar: components.NewStatusBar(port.Path(), port.Baud()),
		help:      help.New(),
		keys:      keys.NewMonitorKeys(),
		filtered:  nmeaOnly,
		cancel:    cancel,
	}
	m.statusBar.SetFiltered(nmeaOnly)

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// The session streams every line; filtering happens in the model so
	// the f key can toggle it while running. Run closes the port.
	go func() {
		sess := oem7.NewSession(port, func(line string) {
			p.Send(components.SentenceMsg{Time: time.Now(), Text: line})
		}, false, log)
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.Send(components.StreamErrorMsg{Err: err})
		}
	}()

	_, err := p.Run()
	return err
}

func isSentence(line string) bool {
	return strings.HasPrefix(line, "$") || strings.HasPrefix(line, "<")
}

func (m *monitorModel) Init() tea.Cmd {
	return nil
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		m.feed.SetSize(msg.Width, msg.Height-statusBarHeight-1)
		m.statusBar.SetWidth(msg.Width)
		m.ready = true

	case components.SentenceMsg:
		if !m.ready {
			m.feed.SetSize(80, 20)
			m.ready = true
		}
		if m.filtered && !isSentence(msg.Text) {
			break
		}
		m.statusBar.CountSentence()
		m.feed.Add(msg)

	case components.StreamErrorMsg:
		m.statusBar.SetError(msg.Err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.feed.Clear()
			m.statusBar.ResetCount()

		case key.Matches(msg, m.keys.Pause):
			m.feed.SetPaused(!m.feed.Paused())
			m.statusBar.SetPaused(m.feed.Paused())

		case key.Matches(msg, m.keys.Filter):
			m.filtered = !m.filtered
			m.statusBar.SetFiltered(m.filtered)

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	var cmd tea.Cmd
	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.feed.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *monitorModel) View() string {
	var content string
	if m.ready {
		content = m.feed.View()
	} else {
		content = "Waiting for data..."
	}

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	statusBar := m.statusBar.View()

	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)
		helpView := helpStyle.Render(m.help.View(m.keys))
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpView,
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}
