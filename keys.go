//go:build !gui

package main

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/metcalfc/folio/internal/i18n"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Focus    key.Binding
	Toggle   key.Binding
	FontUp   key.Binding
	FontDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap(l i18n.Labels) keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Toggle:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", l.Contents)),
		FontUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", l.FontUp)),
		FontDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", l.FontDown)),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f"), key.WithHelp("pgdn", "page down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", l.Help)),
		Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", l.Quit)),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.FontDown, k.FontUp, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Focus},
		{k.PageUp, k.PageDown},
		{k.Toggle, k.FontDown, k.FontUp},
		{k.Help, k.Quit},
	}
}
