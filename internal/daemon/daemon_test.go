package daemon

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/localize"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/widget"
)

type recordingPublisher struct {
	mu      sync.Mutex
	entries []widget.Entry
	themes  []string
}

func (r *recordingPublisher) EntryChanged(e widget.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingPublisher) ThemeChanged(themeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes = append(r.themes, themeID)
	return nil
}

func (r *recordingPublisher) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.themes = nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestDaemon(t *testing.T, clk *clock, pub Publisher) (*Daemon, *selection.Service) {
	t.Helper()

	catalogs, err := catalog.NewLoader("", nil).LoadAll()
	require.NoError(t, err)
	bundle, err := localize.Load("en")
	require.NoError(t, err)

	svc := selection.New(store.NewMemory(), selection.Options{
		Location: time.UTC,
		Rand:     rand.New(rand.NewPCG(7, 11)),
	})
	provider := widget.NewProvider(svc, catalogs, bundle, "")

	d, err := New(provider, Options{
		SnapshotPath: filepath.Join(t.TempDir(), "widget.json"),
		Publisher:    pub,
		Now:          clk.Now,
	})
	require.NoError(t, err)
	return d, svc
}

func TestNextRefresh(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		offset time.Duration
		want   time.Time
	}{
		{
			name: "afternoon",
			now:  time.Date(2026, time.October, 15, 15, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "with offset",
			now:    time.Date(2026, time.October, 15, 15, 0, 0, 0, time.UTC),
			offset: 5 * time.Second,
			want:   time.Date(2026, time.October, 16, 0, 0, 5, 0, time.UTC),
		},
		{
			name:   "inside today's offset window",
			now:    time.Date(2026, time.October, 15, 0, 0, 2, 0, time.UTC),
			offset: 5 * time.Second,
			want:   time.Date(2026, time.October, 15, 0, 0, 5, 0, time.UTC),
		},
		{
			name: "exactly midnight",
			now:  time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextRefresh(tt.now, time.UTC, tt.offset))
		})
	}
}

func TestRegenerate_WritesSnapshot(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)}
	d, _ := newTestDaemon(t, clk, nil)

	require.NoError(t, d.Regenerate())

	snap, err := widget.ReadSnapshot(d.SnapshotPath())
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, catalog.SetMotivations, snap.Entries[0].Set)
	assert.Equal(t, catalog.SetReminders, snap.Entries[1].Set)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 1, 0, time.UTC), snap.RefreshAt)
	assert.Equal(t, widget.CurrentSnapshotVersion, snap.SchemaVersion)
	assert.Equal(t, snap.RefreshAt, d.RefreshAt())
}

func TestRegenerate_SnapshotDisabled(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)}
	d, _ := newTestDaemon(t, clk, nil)

	cfg := config.DefaultDaemonConfig()
	cfg.Snapshot.Enabled = false
	d.ApplyConfig(cfg)

	require.NoError(t, d.Regenerate())
	_, err := os.Stat(d.SnapshotPath())
	assert.True(t, os.IsNotExist(err))
	assert.Len(t, d.Entries(), 2)
}

func TestRegenerate_PublishesOnlyChanges(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	d, svc := newTestDaemon(t, clk, pub)

	require.NoError(t, d.Regenerate())
	assert.Len(t, pub.entries, 2)
	assert.Empty(t, pub.themes)

	pub.reset()
	clk.Set(clk.Now().Add(2 * time.Hour))
	require.NoError(t, d.Regenerate())
	assert.Empty(t, pub.entries, "same day, same theme")

	svc.RecordDisplayedTheme("ocean")
	require.NoError(t, d.Regenerate())
	assert.Equal(t, []string{"ocean"}, pub.themes)
	require.Len(t, pub.entries, 2)
	assert.Equal(t, "ocean", pub.entries[0].ThemeID)

	pub.reset()
	clk.Set(time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC))
	require.NoError(t, d.Regenerate())
	assert.Len(t, pub.entries, 2, "a new day changes every entry")
}

func TestEntry_FallsBackToProvider(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)}
	d, _ := newTestDaemon(t, clk, nil)

	cfg := config.DefaultDaemonConfig()
	cfg.Widget.Sets = []string{"motivations"}
	d.ApplyConfig(cfg)
	require.NoError(t, d.Regenerate())
	require.Len(t, d.Entries(), 1)

	e, err := d.Entry(catalog.SetReminders)
	require.NoError(t, err)
	assert.Equal(t, catalog.SetReminders, e.Set)

	_, err = d.Entry("awards")
	assert.ErrorIs(t, err, widget.ErrNoCatalog)
}

func TestEntry_DoesNotServeYesterdayAfterMidnight(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 23, 59, 30, 0, time.UTC)}
	d, svc := newTestDaemon(t, clk, nil)

	require.NoError(t, d.Regenerate())
	before, err := d.Entry(catalog.SetMotivations)
	require.NoError(t, err)
	assert.Empty(t, d.refreshCh)

	clk.Set(time.Date(2026, time.October, 16, 0, 0, 30, 0, time.UTC))
	c, err := catalog.LoadBundled(catalog.SetMotivations)
	require.NoError(t, err)
	today := svc.Today(c, clk.Now())

	e, err := d.Entry(catalog.SetMotivations)
	require.NoError(t, err)
	assert.Equal(t, today.ID, e.ItemID)
	assert.NotEqual(t, before.ItemID, e.ItemID)
	assert.Equal(t, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC), e.Day)
	assert.Len(t, d.refreshCh, 1, "stale cache requests a refresh")
}

func TestRun_RefreshesOnRequest(t *testing.T) {
	clk := &clock{now: time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	d, svc := newTestDaemon(t, clk, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(d.Entries()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	svc.RecordDisplayedTheme("berry")
	d.Refresh()

	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.themes) == 1 && pub.themes[0] == "berry"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRefresh_NeverBlocks(t *testing.T) {
	clk := &clock{now: time.Now()}
	d, _ := newTestDaemon(t, clk, nil)

	d.Refresh()
	d.Refresh()
	d.Refresh()
	assert.Len(t, d.refreshCh, 1)
}

func TestOnNamespaceChange(t *testing.T) {
	clk := &clock{now: time.Now()}
	d, _ := newTestDaemon(t, clk, nil)

	d.onNamespaceChange("settings")
	assert.Len(t, d.refreshCh, 0)

	d.onNamespaceChange(selection.ThemeKey)
	assert.Len(t, d.refreshCh, 1)
	<-d.refreshCh

	d.onNamespaceChange(selection.RecordKey(catalog.SetReminders))
	assert.Len(t, d.refreshCh, 1)
	<-d.refreshCh

	d.onNamespaceChange("")
	assert.Len(t, d.refreshCh, 1)
}

func TestChangedEntries(t *testing.T) {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	prev := []widget.Entry{
		{Set: catalog.SetMotivations, ItemID: 1, ThemeID: "default", Day: day},
		{Set: catalog.SetReminders, ItemID: 2, ThemeID: "default", Day: day},
	}
	next := []widget.Entry{
		{Set: catalog.SetMotivations, ItemID: 1, ThemeID: "default", Day: day},
		{Set: catalog.SetReminders, ItemID: 3, ThemeID: "default", Day: day},
	}

	changed := changedEntries(prev, next)
	require.Len(t, changed, 1)
	assert.Equal(t, catalog.SetReminders, changed[0].Set)

	assert.Len(t, changedEntries(nil, next), 2)
}
