package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the browse-mode bindings and the form bindings.
type keyMap struct {
	Random      key.Binding
	NextFilter  key.Binding
	PrevFilter  key.Binding
	Up          key.Binding
	Down        key.Binding
	Remove      key.Binding
	AddQuote    key.Binding
	AddCategory key.Binding
	Help        key.Binding
	Quit        key.Binding

	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Random: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "new quote"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next category"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "prev category"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		AddQuote: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add quote"),
		),
		AddCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add category"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch field"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Random, k.NextFilter, k.AddQuote, k.Remove, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Random, k.NextFilter, k.PrevFilter},
		{k.Up, k.Down, k.Remove},
		{k.AddQuote, k.AddCategory},
		{k.Help, k.Quit},
	}
}

// formKeys is the help shown while a form is open.
type formKeys struct{ keyMap }

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.Cancel}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
