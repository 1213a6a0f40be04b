package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PlayPause key.Binding
	Stop      key.Binding
	Next      key.Binding
	Previous  key.Binding
	Restart   key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Voice     key.Binding
	Follow    key.Binding
	Copy      key.Binding
	Edit      key.Binding
	Reload    key.Binding
	Top       key.Binding
	Bottom    key.Binding
	HalfDown  key.Binding
	HalfUp    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Next:      key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next sentence")),
		Previous:  key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "previous sentence")),
		Restart:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "first sentence")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Voice:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next voice")),
		Follow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow playback")),
		Copy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy sentence")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit document")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload document")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g/home", "go to top")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G/end", "go to bottom")),
		HalfDown:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "½ page down")),
		HalfUp:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "½ page up")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpColumns returns the bindings shown in the help view, two columns.
func (k keyMap) helpColumns() [2][]key.Binding {
	return [2][]key.Binding{
		{k.PlayPause, k.Stop, k.Next, k.Previous, k.Restart, k.Faster, k.Slower, k.Voice},
		{k.Follow, k.Copy, k.Edit, k.Reload, k.Top, k.Bottom, k.Help, k.Quit},
	}
}
