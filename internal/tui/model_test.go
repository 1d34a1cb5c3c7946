package tui

import (
	"math/rand/v2"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/widget"
)

var testNow = time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, ns store.Namespace) (Model, *selection.Service) {
	t.Helper()

	catalogs, err := catalog.NewLoader("", nil).LoadAll()
	require.NoError(t, err)
	bundle, err := localize.Load("en")
	require.NoError(t, err)

	svc := selection.New(ns, selection.Options{
		Location: time.UTC,
		Rand:     rand.New(rand.NewPCG(3, 5)),
	})
	m := New(Options{
		Provider:  widget.NewProvider(svc, catalogs, bundle, ""),
		Service:   svc,
		Namespace: ns,
		Config:    config.DefaultConfig(),
		Now:       func() time.Time { return testNow },
	})
	return m, svc
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded runs the initial load and a window resize.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(m.load())
	next, _ = next.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(Model)
}

func TestView_NotReady(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	assert.Equal(t, "Initializing...", m.View())
}

func TestView_ShowsTodaysEntries(t *testing.T) {
	m, svc := newTestModel(t, store.NewMemory())
	m = loaded(t, m)

	require.Len(t, m.entries, 2)
	view := m.View()
	assert.Contains(t, view, "Today's motivation")
	assert.Contains(t, view, "Reminder")
	assert.Contains(t, view, "Daily reminder off")

	rec, ok := svc.Record(catalog.SetMotivations)
	require.True(t, ok)
	assert.Equal(t, rec.SelectedID, m.entries[0].ItemID)
}

func TestUpdate_NextThemeRecordsTheme(t *testing.T) {
	m, svc := newTestModel(t, store.NewMemory())
	m = loaded(t, m)
	assert.Equal(t, "default", m.ThemeID())

	next, cmd := m.Update(keyMsg("t"))
	m = next.(Model)
	require.NotNil(t, cmd)

	assert.Equal(t, "berry", m.ThemeID())
	for _, e := range m.entries {
		assert.Equal(t, "berry", e.ThemeID)
	}

	m.recordTheme(m.ThemeID())()
	id, ok := svc.DisplayedTheme()
	require.True(t, ok)
	assert.Equal(t, "berry", id)
}

func TestUpdate_ToggleReminder(t *testing.T) {
	ns := store.NewMemory()
	m, _ := newTestModel(t, ns)
	m = loaded(t, m)

	_, cmd := m.Update(keyMsg("m"))
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.settings.ReminderEnabled)
	assert.Contains(t, m.View(), "Daily reminder at 19:00")

	saved, err := store.LoadSettings(ns)
	require.NoError(t, err)
	assert.True(t, saved.ReminderEnabled)
	assert.Equal(t, "tui", saved.UpdatedBy)
}

func TestUpdate_DegradedWithoutNamespace(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = loaded(t, m)

	require.Len(t, m.entries, 2)
	assert.Contains(t, m.View(), "Shared storage unavailable")

	_, cmd := m.Update(keyMsg("m"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.True(t, msg.isErr)
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	m = loaded(t, m)

	next, _ := m.Update(keyMsg("?"))
	m = next.(Model)
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "toggle reminder")
}

func TestUpdate_StatusMessage(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	m = loaded(t, m)

	next, cmd := m.Update(statusMsg{text: "hello", isErr: false})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "hello")

	next, _ = m.Update(clearStatusMsg{})
	m = next.(Model)
	assert.NotContains(t, m.View(), "hello")
}

func TestWatchForChanges_NilChannel(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	assert.Nil(t, m.watchForChanges())

	ch := make(chan struct{}, 1)
	m.changes = ch
	ch <- struct{}{}
	assert.Equal(t, namespaceChangedMsg{}, m.watchForChanges())
}

func TestDayCheckDelay(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())

	assert.Equal(t, time.Minute, m.dayCheckDelay(testNow))
	assert.Equal(t, 30*time.Second,
		m.dayCheckDelay(time.Date(2026, time.October, 15, 23, 59, 30, 0, time.UTC)))
}

func TestUpdate_DayCheckReloadsOnlyOnNewDay(t *testing.T) {
	m, _ := newTestModel(t, store.NewMemory())
	m = loaded(t, m)

	_, cmd := m.Update(dayCheckMsg{day: selection.StartOfDay(testNow, time.UTC)})
	require.NotNil(t, cmd)

	// Armed yesterday, e.g. before a suspend spanning midnight.
	yesterday := selection.StartOfDay(testNow, time.UTC).AddDate(0, 0, -1)
	_, cmd = m.Update(dayCheckMsg{day: yesterday})
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "a new day reloads and re-arms")
	assert.Len(t, batch, 2)
}
