package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Select   key.Binding
	Reset    key.Binding
	Dedupe   key.Binding
	Format   key.Binding
	Path     key.Binding
	Over     key.Binding
	Folder   key.Binding
	Save     key.Binding
	Sources  key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("l", "right", "enter"),
			key.WithHelp("l", "expand"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h", "collapse"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select window"),
		),
		Reset: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all open"),
		),
		Dedupe: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dedupe"),
		),
		Format: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "format"),
		),
		Path: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "output path"),
		),
		Over: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "overwrite"),
		),
		Folder: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create folder"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Sources: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "session files"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Select, k.Reset, k.Dedupe, k.Format, k.Path, k.Over, k.Folder, k.Save, k.Sources, k.Reload, k.Quit}
}
