// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/theme"
)

// Default configuration values.
const (
	DefaultPlainTmpl = "{{.Title}}: {{.Text}}"
)

// Config represents the platepix configuration.
type Config struct {
	Group     GroupConfig     `toml:"group"`
	Store     StoreConfig     `toml:"store"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Locale    LocaleConfig    `toml:"locale"`
	Theme     ThemeConfig     `toml:"theme"`
	Widget    WidgetConfig    `toml:"widget"`
	Templates TemplatesConfig `toml:"templates"`
	TUI       TUIConfig       `toml:"tui"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// GroupConfig identifies the namespace shared with platepixd.
type GroupConfig struct {
	ID string `toml:"id"`
}

// StoreConfig selects the namespace backend.
type StoreConfig struct {
	Backend string `toml:"backend"` // file, sqlite, memory
	Path    string `toml:"path"`    // Root for group namespaces; empty = data dir
}

// CatalogConfig points at user catalog overrides.
type CatalogConfig struct {
	Dir string `toml:"dir"` // <dir>/<set>.yaml replaces the bundled catalog
}

// LocaleConfig holds the display language.
type LocaleConfig struct {
	Language string `toml:"language"` // Empty = detect from environment
}

// ThemeConfig holds the initial theme.
type ThemeConfig struct {
	Name string `toml:"name"`
}

// WidgetConfig holds the default message set for widget output.
type WidgetConfig struct {
	MessageSet string `toml:"message_set"`
}

// TemplatesConfig holds output templates.
type TemplatesConfig struct {
	Plain  string            `toml:"plain"`
	Custom map[string]string `toml:"custom"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp bool `toml:"show_help"`
	Width    int  `toml:"width"` // Card width, 0 = automatic
}

// ClipboardConfig holds clipboard settings (TUI only).
type ClipboardConfig struct {
	Command string `toml:"command"` // Auto-detected if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Group: GroupConfig{
			ID: store.DefaultGroupID,
		},
		Store: StoreConfig{
			Backend: string(store.BackendFile),
		},
		Theme: ThemeConfig{
			Name: theme.DefaultThemeID,
		},
		Widget: WidgetConfig{
			MessageSet: string(catalog.SetMotivations),
		},
		Templates: TemplatesConfig{
			Plain:  DefaultPlainTmpl,
			Custom: make(map[string]string),
		},
		TUI: TUIConfig{
			ShowHelp: true,
		},
	}
}

// ConfigDir returns the platepix configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "platepix")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(store.ValidBackends(), store.Backend(c.Store.Backend)) {
		return fmt.Errorf("invalid store backend %q, must be one of: %v", c.Store.Backend, store.ValidBackends())
	}
	if _, err := catalog.ParseSet(c.Widget.MessageSet); err != nil {
		return fmt.Errorf("widget.message_set: %w", err)
	}
	if c.Theme.Name != "" && !theme.Exists(c.Theme.Name) {
		return fmt.Errorf("unknown theme %q, must be one of: %v", c.Theme.Name, theme.List())
	}
	if c.TUI.Width < 0 {
		return fmt.Errorf("tui width must not be negative, got %d", c.TUI.Width)
	}
	return nil
}

// StoreOptions returns the namespace options described by the config.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		GroupID: c.Group.ID,
		Backend: store.Backend(c.Store.Backend),
		Root:    expandPath(c.Store.Path),
	}
}

// CatalogDir returns the catalog override directory with ~ expanded.
func (c *Config) CatalogDir() string {
	return expandPath(c.Catalog.Dir)
}

// MessageSet returns the configured default message set.
func (c *Config) MessageSet() catalog.Set {
	set, err := catalog.ParseSet(c.Widget.MessageSet)
	if err != nil {
		return catalog.SetMotivations
	}
	return set
}

// GetTemplate returns the template for the given name.
// First checks custom templates, then built-in ones.
// Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Templates.Custom[name]; ok {
		return tmpl
	}
	if name == "plain" {
		return c.Templates.Plain
	}
	return ""
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path, err := store.DataDir()
	if err != nil {
		return fmt.Errorf("unable to determine data directory: %w", err)
	}
	return os.MkdirAll(path, 0755)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
