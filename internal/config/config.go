package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Labels  LabelConfig   `toml:"labels"`
	Badges  BadgeConfig   `toml:"badges"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// LabelConfig holds the display labels of the status filter options.
type LabelConfig struct {
	All       string `toml:"all"`
	Completed string `toml:"completed"`
	Pending   string `toml:"pending"`
	Planned   string `toml:"planned"`
}

// BadgeConfig holds lipgloss colour specs per status.
type BadgeConfig struct {
	Completed string `toml:"completed"`
	Pending   string `toml:"pending"`
	Planned   string `toml:"planned"`
	Neutral   string `toml:"neutral"`
}

type UIConfig struct {
	ShowFilters          bool `toml:"show_filters"`
	WatchConfig          bool `toml:"watch_config"`
	MarkdownDescriptions bool `toml:"markdown_descriptions"`
}

type KeyConfig struct {
	NewTask       string `toml:"new_task"`
	ClearFilters  string `toml:"clear_filters"`
	ToggleFilters string `toml:"toggle_filters"`
	Yank          string `toml:"yank"`
}

var validLevels = []string{"debug", "info", "warn", "error"}

func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Labels: LabelConfig{
			All:       "All",
			Completed: "Completed",
			Pending:   "Pending",
			Planned:   "Planned",
		},
		Badges: BadgeConfig{
			Completed: "42",
			Pending:   "214",
			Planned:   "245",
			Neutral:   "245",
		},
		UI: UIConfig{
			ShowFilters:          true,
			WatchConfig:          false,
			MarkdownDescriptions: true,
		},
		Keys: KeyConfig{
			NewTask:       "n",
			ClearFilters:  "c",
			ToggleFilters: "f",
			Yank:          "y",
		},
	}
}

// Load reads path over defaults. A blank path, a missing file and an empty
// file all yield defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if !slices.Contains(validLevels, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	labels := []struct {
		key   string
		value string
	}{
		{"labels.all", c.Labels.All},
		{"labels.completed", c.Labels.Completed},
		{"labels.pending", c.Labels.Pending},
		{"labels.planned", c.Labels.Planned},
	}
	for _, l := range labels {
		if strings.TrimSpace(l.value) == "" {
			return fmt.Errorf("%s must not be blank", l.key)
		}
	}

	keys := []struct {
		key   string
		value string
	}{
		{"keys.new_task", c.Keys.NewTask},
		{"keys.clear_filters", c.Keys.ClearFilters},
		{"keys.toggle_filters", c.Keys.ToggleFilters},
		{"keys.yank", c.Keys.Yank},
	}
	seen := map[string]string{}
	for _, k := range keys {
		binding := normalizeBinding(k.value)
		if binding == "" {
			continue
		}
		if slices.Contains(reservedKeys, binding) {
			return fmt.Errorf("%s uses reserved key %q", k.key, binding)
		}
		if other, ok := seen[binding]; ok {
			return fmt.Errorf("%s duplicates %s: %q", k.key, other, binding)
		}
		seen[binding] = k.key
	}

	return nil
}

// reservedKeys are the fixed list-mode bindings that configurable keys may not shadow.
var reservedKeys = []string{"q", "ctrl+c", "r", "?", "k", "up", "j", "down", "space", "x", "enter", "/"}

// normalizeBinding maps a configured key onto the form reservedKeys uses.
func normalizeBinding(raw string) string {
	if raw == " " {
		return "space"
	}
	binding := strings.TrimSpace(raw)
	if strings.EqualFold(binding, "space") {
		return "space"
	}
	return binding
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
