package widget

import (
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
)

func testProvider(t *testing.T, ns store.Namespace) *Provider {
	t.Helper()

	catalogs, err := catalog.NewLoader("", nil).LoadAll()
	require.NoError(t, err)
	bundle, err := localize.Load("en")
	require.NoError(t, err)

	svc := selection.New(ns, selection.Options{
		Location: time.UTC,
		Rand:     rand.New(rand.NewPCG(1, 2)),
	})
	return NewProvider(svc, catalogs, bundle, "")
}

func TestSnapshot_ResolvesTodaysItem(t *testing.T) {
	p := testProvider(t, store.NewMemory())
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

	e, err := p.Snapshot(catalog.SetMotivations, now)
	require.NoError(t, err)

	assert.Equal(t, catalog.SetMotivations, e.Set)
	assert.Equal(t, "Today's motivation", e.Title)
	assert.NotZero(t, e.ItemID)
	assert.NotEqual(t, e.TextKey, e.Text, "text must be localized")
	assert.Equal(t, "default", e.ThemeID)
	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC), e.Day)
	assert.False(t, e.Placeholder)

	_, err = ulid.Parse(e.ID)
	assert.NoError(t, err)

	again, err := p.Snapshot(catalog.SetMotivations, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, e.ItemID, again.ItemID)
	assert.NotEqual(t, e.ID, again.ID, "each entry gets its own id")
}

func TestSnapshot_UnknownSet(t *testing.T) {
	p := testProvider(t, store.NewMemory())
	_, err := p.Snapshot("awards", time.Now())
	assert.ErrorIs(t, err, ErrNoCatalog)
}

func TestTimeline_RefreshesAtNextMidnight(t *testing.T) {
	p := testProvider(t, store.NewMemory())
	now := time.Date(2026, time.October, 15, 22, 10, 0, 0, time.UTC)

	tl, err := p.Timeline(catalog.SetReminders, now)
	require.NoError(t, err)
	require.Len(t, tl.Entries, 1)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC), tl.RefreshAt)
}

func TestThemeID_MirrorsRecordedTheme(t *testing.T) {
	ns := store.NewMemory()
	p := testProvider(t, ns)
	assert.Equal(t, "default", p.ThemeID())

	require.NoError(t, store.SetString(ns, selection.ThemeKey, "ocean"))
	assert.Equal(t, "ocean", p.ThemeID())

	// Unknown ids recorded by a newer app version are ignored.
	require.NoError(t, store.SetString(ns, selection.ThemeKey, "neon"))
	assert.Equal(t, "default", p.ThemeID())
}

func TestPlaceholder(t *testing.T) {
	p := testProvider(t, nil)
	e := p.Placeholder(catalog.SetMotivations)
	assert.True(t, e.Placeholder)
	assert.Equal(t, "Your daily plate inspiration", e.Text)
	assert.Zero(t, e.ItemID)
}

func TestSnapshot_DegradedStoreUsesFirstItem(t *testing.T) {
	p := testProvider(t, nil)
	e, err := p.Snapshot(catalog.SetMotivations, time.Now())
	require.NoError(t, err)

	c, err := catalog.LoadBundled(catalog.SetMotivations)
	require.NoError(t, err)
	assert.Equal(t, c.First().ID, e.ItemID)
}

func TestSets(t *testing.T) {
	p := testProvider(t, nil)
	assert.Equal(t, []catalog.Set{catalog.SetMotivations, catalog.SetReminders}, p.Sets())
}

func TestRender(t *testing.T) {
	e := Entry{
		Title:   "Today's motivation",
		Text:    "Small swaps add up to big changes.",
		ThemeID: "sunset",
		Day:     time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC),
	}
	out := Render(e, 50)
	assert.Contains(t, out, "Today's motivation")
	assert.Contains(t, out, "Small swaps")
	assert.Contains(t, out, "Thursday, 15 October")
}

func TestSnapshotFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "widget.json")

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Nil(t, snap)

	refresh := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	require.NoError(t, WriteSnapshot(path, &SnapshotFile{
		Entries:   []Entry{{Set: catalog.SetMotivations, ItemID: 3, Text: "hi"}},
		RefreshAt: refresh,
	}))

	snap, err = ReadSnapshot(path)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, CurrentSnapshotVersion, snap.SchemaVersion)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, 3, snap.Entries[0].ItemID)

	assert.False(t, snap.Stale(refresh.Add(-time.Second)))
	assert.True(t, snap.Stale(refresh))
}
