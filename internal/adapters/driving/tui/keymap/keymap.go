// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the full set of bindings. Views match keys with key.Matches
// against these fields and render their hints from the view's group.
type KeyMap struct {
	Quit key.Binding
	Back key.Binding
	Up   key.Binding
	Down key.Binding

	Select key.Binding

	// Paper list.
	Process key.Binding
	Delete  key.Binding
	Reload  key.Binding

	// Paper detail.
	Length   key.Binding
	AskPaper key.Binding

	// Ask view.
	Ask         key.Binding
	NewQuestion key.Binding
}

// DefaultKeyMap returns vim-style bindings with arrow key aliases.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Process:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "process")),
		Delete:      key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Length:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "summary length")),
		AskPaper:    key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "ask")),
		Ask:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
		NewQuestion: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new question")),
	}
}

// MenuHelp lists the menu bindings.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// PapersHelp lists the paper list bindings.
func (k *KeyMap) PapersHelp() []key.Binding {
	return []key.Binding{k.Select, k.Process, k.Delete, k.Reload, k.Back}
}

// PaperHelp lists the paper detail bindings.
func (k *KeyMap) PaperHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Length, k.AskPaper, k.Back}
}

// ShortHelp lists the bindings while a question is being typed.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// AnswerHelp lists the bindings once an answer is shown.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Down, k.Back}
}

// FullHelp groups every binding for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.MenuHelp(),
		k.PapersHelp(),
		k.PaperHelp(),
		{k.Ask, k.NewQuestion},
	}
}

// HelpLine renders bindings as "[key] desc" pairs. Disabled bindings are
// skipped.
func HelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
