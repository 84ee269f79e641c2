package keyboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the single-key shortcuts available outside text inputs.
type KeyMap struct {
	NextPage       key.Binding
	PrevPage       key.Binding
	Refresh        key.Binding
	ToggleBookmark key.Binding
	Settings       key.Binding
	Feeds          key.Binding
	Back           key.Binding
	Down           key.Binding
	Up             key.Binding
	Filter         key.Binding
	Open           key.Binding
	Copy           key.Binding
	ToggleRead     key.Binding
	Help           key.Binding
	Quit           key.Binding
	Select         key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		PrevPage:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		ToggleBookmark: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		Settings:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Feeds:          key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "feeds")),
		Back:           key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Filter:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Open:           key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Copy:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		ToggleRead:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "read/unread")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Select:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("0-9 enter", "go to article")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Select, k.ToggleBookmark, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.Down, k.Up, k.Select},
		{k.Back, k.ToggleBookmark, k.ToggleRead, k.Filter},
		{k.Open, k.Copy, k.Refresh, k.Settings, k.Feeds},
		{k.Help, k.Quit},
	}
}
