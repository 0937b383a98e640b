package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the list-mode bindings.
type keyMap struct {
	quit              key.Binding
	reload            key.Binding
	toggleHelp        key.Binding
	moveUp            key.Binding
	moveDown          key.Binding
	toggleCompleted   key.Binding
	toggleDescription key.Binding
	newTask           key.Binding
	focusFilters      key.Binding
	clearFilters      key.Binding
	toggleFilters     key.Binding
	yank              key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit:              key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:            key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload config")),
		toggleHelp:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		toggleCompleted:   key.NewBinding(key.WithKeys("space", " ", "x"), key.WithHelp("space/x", "toggle done")),
		toggleDescription: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "description")),
		newTask:           key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		focusFilters:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filters")),
		clearFilters:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		toggleFilters:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "show/hide filters")),
		yank:              key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
	}
}

// applyConfig rebinds the configurable actions, keeping defaults for blank values.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.newTask, cfg.NewTask, "n", "new task")
	configureBinding(&k.clearFilters, cfg.ClearFilters, "c", "clear filters")
	configureBinding(&k.toggleFilters, cfg.ToggleFilters, "f", "show/hide filters")
	configureBinding(&k.yank, cfg.Yank, "y", "copy task")
}

func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}

// parseBindingKeys turns a configured key into matcher keys and a help label.
// A single uppercase rune also matches its shift+ form.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	if raw == " " || strings.EqualFold(strings.TrimSpace(raw), "space") {
		return []string{" ", "space"}, "space"
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		value = fallback
	}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		if unicode.IsUpper(r) {
			return []string{value, "shift+" + string(unicode.ToLower(r))}, value
		}
		return []string{value}, value
	}
	return []string{strings.ToLower(value)}, value
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.newTask, k.toggleCompleted, k.toggleDescription, k.focusFilters, k.clearFilters, k.toggleHelp, k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.toggleCompleted, k.toggleDescription, k.yank},
		{k.newTask, k.focusFilters, k.clearFilters, k.toggleFilters},
		{k.reload, k.toggleHelp, k.quit},
	}
}
