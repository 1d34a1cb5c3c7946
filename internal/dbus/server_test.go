package dbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/widget"
)

type fakeSource struct {
	entries   map[catalog.Set]widget.Entry
	theme     string
	refreshed int
}

func (f *fakeSource) Entry(set catalog.Set) (widget.Entry, error) {
	e, ok := f.entries[set]
	if !ok {
		return widget.Entry{}, errors.New("no entry")
	}
	return e, nil
}

func (f *fakeSource) ThemeID() string { return f.theme }

func (f *fakeSource) Sets() []catalog.Set {
	return []catalog.Set{catalog.SetMotivations}
}

func (f *fakeSource) Refresh() { f.refreshed++ }

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: map[catalog.Set]widget.Entry{
			catalog.SetMotivations: {
				Set:     catalog.SetMotivations,
				ItemID:  4,
				Text:    "Eat the rainbow.",
				ThemeID: "sunset",
			},
		},
		theme: "sunset",
	}
}

func TestGetToday(t *testing.T) {
	s := NewWidgetServer(newFakeSource(), nil)

	id, text, theme, placeholder, dbusErr := s.GetToday("motivations")
	require.Nil(t, dbusErr)
	assert.Equal(t, int32(4), id)
	assert.Equal(t, "Eat the rainbow.", text)
	assert.Equal(t, "sunset", theme)
	assert.False(t, placeholder)
}

func TestGetToday_Errors(t *testing.T) {
	s := NewWidgetServer(newFakeSource(), nil)

	_, _, _, _, dbusErr := s.GetToday("jokes")
	assert.NotNil(t, dbusErr)

	_, _, _, _, dbusErr = s.GetToday("reminders")
	assert.NotNil(t, dbusErr)
}

func TestGetThemeAndSets(t *testing.T) {
	s := NewWidgetServer(newFakeSource(), nil)

	theme, dbusErr := s.GetTheme()
	require.Nil(t, dbusErr)
	assert.Equal(t, "sunset", theme)

	sets, dbusErr := s.ListSets()
	require.Nil(t, dbusErr)
	assert.Equal(t, []string{"motivations"}, sets)
}

func TestRefresh(t *testing.T) {
	src := newFakeSource()
	s := NewWidgetServer(src, nil)

	require.Nil(t, s.Refresh())
	assert.Equal(t, 1, src.refreshed)
}

func TestSignalsRequireConnection(t *testing.T) {
	s := NewWidgetServer(newFakeSource(), nil)

	assert.ErrorIs(t, s.EntryChanged(widget.Entry{}), ErrNotConnected)
	assert.ErrorIs(t, s.ThemeChanged("ocean"), ErrNotConnected)
	assert.NoError(t, s.Stop())
}

func TestIntrospectionData(t *testing.T) {
	var names []string
	for _, m := range widgetMethods() {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"GetToday", "GetTheme", "ListSets", "Refresh"}, names)
	assert.Len(t, widgetSignals(), 2)
}
