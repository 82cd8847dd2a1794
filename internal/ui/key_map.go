package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the board.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	pick    key.Binding
	moveSet key.Binding
	drop    key.Binding
	cancel  key.Binding
	save    key.Binding
	revert  key.Binding
	open    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		pick:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick up / drop")),
		moveSet: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move set")),
		drop:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		revert:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "revert")),
		open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.pick, k.moveSet, k.save, k.revert, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.pick, k.moveSet, k.drop, k.cancel},
		{k.save, k.revert, k.quit},
	}
}

// dragHelp lists the bindings available while something is held.
func (k keyMap) dragHelp() []key.Binding {
	return []key.Binding{k.left, k.right, k.up, k.down, k.drop, k.cancel}
}
