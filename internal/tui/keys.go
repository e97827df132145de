package tui

import "charm.land/bubbles/v2/key"

// KeyMap holds the reader's key bindings.
type KeyMap struct {
	Forward     key.Binding
	Back        key.Binding
	Start       key.Binding
	End         key.Binding
	PrevSection key.Binding
	NextSection key.Binding
	Overview    key.Binding
	Quit        key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Close  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Forward:     key.NewBinding(key.WithKeys("right", "l", "space"), key.WithHelp("→/l", "next page")),
		Back:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous page")),
		Start:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		End:         key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),
		PrevSection: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous section")),
		NextSection: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next section")),
		Overview:    key.NewBinding(key.WithKeys("o", "tab"), key.WithHelp("o", "overview")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to section")),
		Close:  key.NewBinding(key.WithKeys("esc", "o", "q"), key.WithHelp("esc", "close")),
	}
}

// ShortHelp lists the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Forward, k.Back, k.Overview, k.Quit}
}

// percentKey maps the digit keys to seek targets: 1 is 10%, 0 is the start.
func percentKey(s string) (float64, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return float64(s[0]-'0') / 10, true
}
