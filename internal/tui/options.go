package tui

import (
	"time"

	"github.com/evanschultz/tasklist/internal/app"
)

// KeyConfig holds the rebindable list-mode keys.
type KeyConfig struct {
	NewTask       string
	ClearFilters  string
	ToggleFilters string
	Yank          string
}

// RuntimeConfig holds the settings that can change while the program runs.
type RuntimeConfig struct {
	Labels               app.StatusLabels
	Badges               app.BadgeClasses
	ShowFilters          bool
	MarkdownDescriptions bool
	Keys                 KeyConfig
}

// ReloadConfigFunc loads a fresh RuntimeConfig from disk.
type ReloadConfigFunc func() (RuntimeConfig, error)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

type Option func(*Model)

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Labels:               app.DefaultStatusLabels(),
		Badges:               app.DefaultBadgeClasses(),
		ShowFilters:          true,
		MarkdownDescriptions: true,
		Keys: KeyConfig{
			NewTask:       "n",
			ClearFilters:  "c",
			ToggleFilters: "f",
			Yank:          "y",
		},
	}
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.runtime = cfg
	}
}

func WithReloadConfigCallback(fn ReloadConfigFunc) Option {
	return func(m *Model) {
		m.reloadConfig = fn
	}
}

// WithClock sets the clock used by the creation form's date rule.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		m.clipboard = fn
	}
}

// withMarkdownStyle overrides the glamour style, mainly for deterministic tests.
func withMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.markdownStyle = style
	}
}
