package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Search     key.Binding
	Filter     key.Binding
	Expression key.Binding
	Unfilter   key.Binding
	Clear      key.Binding
	Sort       key.Binding
	Mode       key.Binding
	Yank       key.Binding
	YankCell   key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "screen up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "screen down")),
		Top:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first row")),
		Bottom:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last row")),
		NextPage:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "prev page")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		Expression: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "filter expression")),
		Unfilter:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop filter")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Mode:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "paged/virtual")),
		Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy row")),
		YankCell:   key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy cell")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Up, k.Left, k.NextPage, k.Search, k.Filter, k.Expression, k.Unfilter, k.Clear, k.Sort, k.Mode, k.Yank, k.Quit}
	line := ""
	for i, b := range bindings {
		if i > 0 {
			line += "  "
		}
		line += b.Help().Key + " " + b.Help().Desc
	}
	return line
}
