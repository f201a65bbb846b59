package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down   key.Binding
	Switch     key.Binding
	Add        key.Binding
	Edit       key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	Search     key.Binding
	Reset      key.Binding
	Refresh    key.Binding
	Submit     key.Binding
	Back       key.Binding
	Next, Prev key.Binding
	Confirm    key.Binding
	Deny       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Switch:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "form/list")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle status")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset search")),
		Refresh:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Deny:      key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// listHelp is shown while the list has focus.
func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Edit, k.Delete, k.Add, k.Search, k.Reset, k.Switch, k.Quit}
}

func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Back}
}

func (k keyMap) searchHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Back}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny}
}
