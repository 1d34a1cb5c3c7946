package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SettingsKey is the namespace key holding the app settings.
const SettingsKey = "settings"

// CurrentSettingsVersion is the current version of the settings schema.
const CurrentSettingsVersion = 1

// DefaultReminderTime is used until the user picks one.
const DefaultReminderTime = "19:00"

// ErrInvalidReminderTime is returned for reminder times not in HH:MM form.
var ErrInvalidReminderTime = errors.New("reminder time must be HH:MM")

// Settings are app preferences kept in the shared namespace so the widget
// process can read them. platepix stores them but never schedules anything.
type Settings struct {
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time"` // "HH:MM", local time

	UpdatedAt int64  `json:"updated_at,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"` // e.g. "cli", "tui"

	SchemaVersion int `json:"schema_version"`
}

// DefaultSettings returns Settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ReminderEnabled: false,
		ReminderTime:    DefaultReminderTime,
		SchemaVersion:   CurrentSettingsVersion,
	}
}

// LoadSettings reads the settings from ns.
// If the key is missing or corrupted, returns defaults.
func LoadSettings(ns Namespace) (*Settings, error) {
	data, ok, err := ns.Get(SettingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultSettings(), nil
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), nil
	}

	if s.SchemaVersion == 0 {
		s.SchemaVersion = CurrentSettingsVersion
	}
	if s.ReminderTime == "" {
		s.ReminderTime = DefaultReminderTime
	}
	return &s, nil
}

// SaveSettings writes the settings to ns and flushes.
func SaveSettings(ns Namespace, s *Settings) error {
	if s.SchemaVersion == 0 {
		s.SchemaVersion = CurrentSettingsVersion
	}
	if err := SetJSON(ns, SettingsKey, s); err != nil {
		return err
	}
	return ns.Synchronize()
}

// SetReminder updates the reminder preference.
// An empty at keeps the current time.
func (s *Settings) SetReminder(enabled bool, at, source string) error {
	if at != "" {
		if _, err := ParseReminderTime(at); err != nil {
			return err
		}
		s.ReminderTime = at
	}
	s.ReminderEnabled = enabled
	s.UpdatedAt = time.Now().Unix()
	s.UpdatedBy = source
	return nil
}

// ParseReminderTime parses "HH:MM" into hour and minute as a duration
// past midnight.
func ParseReminderTime(at string) (time.Duration, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, at)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
