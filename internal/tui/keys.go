package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Sort      key.Binding
	Select    key.Binding
	SelectAll key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	PageSize  key.Binding
	Density   key.Binding
	Window    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Sort:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "sort column")),
		Select:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select row")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/h", "prev page")),
		NextPage:  key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/l", "next page")),
		PageSize:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "rows per page")),
		Density:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dense")),
		Window:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "time window")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Select, k.PrevPage, k.NextPage, k.Window, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Sort, k.Select, k.SelectAll},
		{k.PageSize, k.Density, k.Window},
		{k.Refresh, k.Help, k.Quit},
	}
}

// tableKeyMap keeps only cursor movement; paging belongs to the controller.
func tableKeyMap(k keyMap) table.KeyMap {
	km := table.DefaultKeyMap()
	km.LineUp = k.Up
	km.LineDown = k.Down
	for _, b := range []*key.Binding{&km.PageUp, &km.PageDown, &km.HalfPageUp, &km.HalfPageDown} {
		b.SetEnabled(false)
	}
	return km
}
