package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/platepix/internal/catalog"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "10s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Limits for daemon settings.
const (
	MaxRefreshOffset = time.Hour
	MinPollInterval  = 100 * time.Millisecond
)

// DaemonConfig is the configuration for platepixd.
// Loaded from ~/.config/platepix/platepixd.toml
type DaemonConfig struct {
	Refresh  RefreshConfig      `toml:"refresh"`
	Snapshot SnapshotConfig     `toml:"snapshot"`
	DBus     DBusConfig         `toml:"dbus"`
	Widget   DaemonWidgetConfig `toml:"widget"`
}

// RefreshConfig controls when the widget timeline is regenerated.
type RefreshConfig struct {
	Offset       Duration `toml:"offset"`        // Delay after local midnight, e.g. "5s"
	PollInterval Duration `toml:"poll_interval"` // Config file poll interval
}

// SnapshotConfig controls the status-bar snapshot file.
type SnapshotConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = <data dir>/widget.json
}

// DBusConfig controls the session bus service.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// DaemonWidgetConfig selects which message sets the widget renders.
type DaemonWidgetConfig struct {
	Sets []string `toml:"sets"`
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Refresh: RefreshConfig{
			Offset:       Duration(time.Second),
			PollInterval: Duration(2 * time.Second),
		},
		Snapshot: SnapshotConfig{
			Enabled: true,
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		Widget: DaemonWidgetConfig{
			Sets: []string{string(catalog.SetMotivations), string(catalog.SetReminders)},
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	dir := ConfigDir()
	if dir == "" {
		return "", errors.New("unable to determine config directory")
	}
	return filepath.Join(dir, "platepixd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from the default path.
func LoadDaemonConfig() (*DaemonConfig, error) {
	path, err := DaemonConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadDaemonConfigFile(path)
}

// LoadDaemonConfigFile loads the daemon configuration from path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfigFile(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	offset := c.Refresh.Offset.Duration()
	if offset < 0 || offset > MaxRefreshOffset {
		return fmt.Errorf("refresh offset must be between 0 and %s, got %s", MaxRefreshOffset, offset)
	}
	if c.Refresh.PollInterval.Duration() < MinPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", MinPollInterval, c.Refresh.PollInterval.Duration())
	}
	if len(c.Widget.Sets) == 0 {
		return errors.New("widget sets must not be empty")
	}
	for _, s := range c.Widget.Sets {
		if _, err := catalog.ParseSet(s); err != nil {
			return fmt.Errorf("widget sets: %w", err)
		}
	}
	return nil
}

// MessageSets returns the configured widget sets in order, without duplicates.
func (c *DaemonConfig) MessageSets() []catalog.Set {
	seen := make(map[catalog.Set]bool)
	var out []catalog.Set
	for _, s := range c.Widget.Sets {
		set, err := catalog.ParseSet(s)
		if err != nil || seen[set] {
			continue
		}
		seen[set] = true
		out = append(out, set)
	}
	return out
}

// SnapshotPath returns the snapshot path with ~ expanded. Empty means the
// default location.
func (c *DaemonConfig) SnapshotPath() string {
	return expandPath(c.Snapshot.Path)
}
