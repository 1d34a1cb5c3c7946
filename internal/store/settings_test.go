package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(NewMemory())
	require.NoError(t, err)
	assert.False(t, s.ReminderEnabled)
	assert.Equal(t, DefaultReminderTime, s.ReminderTime)
	assert.Equal(t, CurrentSettingsVersion, s.SchemaVersion)
}

func TestLoadSettings_CorruptedReturnsDefaults(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(SettingsKey, []byte("{{{")))

	s, err := LoadSettings(m)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettings_RoundTrip(t *testing.T) {
	m := NewMemory()
	s := DefaultSettings()
	require.NoError(t, s.SetReminder(true, "08:30", "cli"))
	require.NoError(t, SaveSettings(m, s))

	loaded, err := LoadSettings(m)
	require.NoError(t, err)
	assert.True(t, loaded.ReminderEnabled)
	assert.Equal(t, "08:30", loaded.ReminderTime)
	assert.Equal(t, "cli", loaded.UpdatedBy)
	assert.NotZero(t, loaded.UpdatedAt)
}

func TestSetReminder_KeepsTimeWhenEmpty(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.SetReminder(true, "", "tui"))
	assert.Equal(t, DefaultReminderTime, s.ReminderTime)
	assert.True(t, s.ReminderEnabled)
}

func TestParseReminderTime(t *testing.T) {
	d, err := ParseReminderTime("07:45")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+45*time.Minute, d)

	for _, bad := range []string{"7pm", "25:00", "12:60", ""} {
		_, err := ParseReminderTime(bad)
		assert.ErrorIs(t, err, ErrInvalidReminderTime, bad)
	}
}
