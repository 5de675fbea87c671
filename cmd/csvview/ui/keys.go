package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
)

// KeyMap is the table view key bindings. It implements help.KeyMap.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Prev     key.Binding
	Next     key.Binding
	FastPrev key.Binding
	FastNext key.Binding
	First    key.Binding
	Last     key.Binding
	Search   key.Binding
	Detail   key.Binding
	Open     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the stock bindings. jump is the page count skipped by [ and ].
func DefaultKeyMap(jump int) KeyMap {
	n := strconv.Itoa(jump)
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		FastPrev: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "back "+n)),
		FastNext: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "ahead "+n)),
		First:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Detail:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open file")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Search, k.Detail, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail},
		{k.Prev, k.Next, k.FastPrev, k.FastNext, k.First, k.Last},
		{k.Search, k.Open, k.Help, k.Quit},
	}
}

// gridKeyMap limits the embedded table to row movement; paging belongs to
// the controller.
func gridKeyMap(k KeyMap) table.KeyMap {
	return table.KeyMap{
		LineUp:   k.Up,
		LineDown: k.Down,
	}
}

// DetailKeyMap is the row detail modal bindings.
type DetailKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Copy  key.Binding
	Close key.Binding
}

// DefaultDetailKeyMap returns the stock modal bindings.
func DefaultDetailKeyMap() DetailKeyMap {
	return DetailKeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev field")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next field")),
		Copy:  key.NewBinding(key.WithKeys("c", "y", "enter"), key.WithHelp("c/y", "copy")),
		Close: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp implements help.KeyMap.
func (k DetailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Copy, k.Close}
}

// FullHelp implements help.KeyMap.
func (k DetailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
