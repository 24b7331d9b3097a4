package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the single-key bindings. "gg" (top) and "gh" (home) are
// two-key sequences handled by the model.
type KeyMap struct {
	ScrollDown, ScrollUp     key.Binding
	HalfPageDown, HalfPageUp key.Binding
	GotoBottom               key.Binding

	Back, Reload, FollowLink, OpenExternal key.Binding

	CommandMode, Help, Quit key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollDown:   bind("j", "scroll down", "j", "down"),
		ScrollUp:     bind("k", "scroll up", "k", "up"),
		HalfPageDown: bind("ctrl+d", "half page down", "ctrl+d", "pgdown", " "),
		HalfPageUp:   bind("ctrl+u", "half page up", "ctrl+u", "pgup"),
		GotoBottom:   bind("G", "bottom", "G", "end"),

		Back:         bind("H / backspace", "go back", "H", "backspace", "alt+left", "b"),
		Reload:       bind("r", "reload page", "r", "f5"),
		FollowLink:   bind("f <n>", "follow link n", "f"),
		OpenExternal: bind("O", "open page in system browser", "O"),

		CommandMode: bind(":", "command (back, reload, home, open, theme, quit)", ":"),
		Help:        bind("?", "toggle this help", "?"),
		Quit:        bind("q", "quit", "q", "ctrl+c"),
	}
}

// helpRows lists the bindings in the order the help page shows them,
// with the two-key sequences slotted in.
func (k KeyMap) helpRows() []key.Binding {
	return []key.Binding{
		k.Back, k.FollowLink, k.Reload,
		key.NewBinding(key.WithHelp("gh", "home page")),
		k.OpenExternal,
		k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp,
		key.NewBinding(key.WithHelp("gg", "top")),
		k.GotoBottom,
		k.CommandMode, k.Help, k.Quit,
	}
}
