package keys

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys defines the key bindings for the sentence monitor
type MonitorKeys struct {
	Quit   key.Binding
	Clear  key.Binding
	Pause  key.Binding
	Filter key.Binding
	Help   key.Binding
}

func NewMonitorKeys() MonitorKeys {
	return MonitorKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause/resume"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle sentence filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k MonitorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Filter, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap
func (k MonitorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Filter},
		{k.Clear, k.Help, k.Quit},
	}
}
