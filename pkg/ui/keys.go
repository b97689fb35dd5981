package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the viewer's bindings; it implements help.KeyMap.
type keyMap struct {
	Parent      key.Binding
	Child       key.Binding
	PrevSibling key.Binding
	NextSibling key.Binding
	Root        key.Binding
	Deeper      key.Binding
	Shallower   key.Binding
	Copy        key.Binding
	Prompt      key.Binding
	Outline     key.Binding
	Properties  key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Parent: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "parent"),
		),
		Child: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "first child"),
		),
		PrevSibling: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "previous sibling"),
		),
		NextSibling: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next sibling"),
		),
		Root: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "root"),
		),
		Deeper: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "deeper window"),
		),
		Shallower: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "shallower window"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy label"),
		),
		Prompt: key.NewBinding(
			key.WithKeys(":", "/"),
			key.WithHelp(":", "prompt"),
		),
		Outline: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "outline"),
		),
		Properties: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "properties"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload file"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Parent, k.NextSibling, k.Deeper, k.Prompt, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Parent, k.Child, k.PrevSibling, k.NextSibling, k.Root},
		{k.Deeper, k.Shallower, k.Copy, k.Reload},
		{k.Prompt, k.Outline, k.Properties, k.Help, k.Quit},
	}
}

// promptKeys apply while the prompt has focus.
type promptKeys struct {
	Submit  key.Binding
	Cancel  key.Binding
	Older   key.Binding
	Newer   key.Binding
	Abandon key.Binding
}

func defaultPromptKeys() promptKeys {
	return promptKeys{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to tree")),
		Older:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "older")),
		Newer:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "newer")),
		Abandon: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
