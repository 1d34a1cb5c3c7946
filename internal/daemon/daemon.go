package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/config"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
	"github.com/jmylchreest/platepix/internal/widget"
)

// wakeInterval bounds how long the refresh loop sleeps, so a missed day
// boundary (suspend, clock change) is noticed promptly.
const wakeInterval = time.Minute

// Publisher is notified when the rendered widget state changes.
type Publisher interface {
	EntryChanged(e widget.Entry) error
	ThemeChanged(themeID string) error
}

// Options configures a Daemon.
type Options struct {
	Config *config.DaemonConfig
	// ConfigPath enables hot reload of the daemon config when set.
	ConfigPath string
	// SnapshotPath overrides where the snapshot file is written.
	SnapshotPath string
	// Namespace is watched for changes made by the app. May be nil.
	Namespace store.Namespace
	Publisher Publisher
	Now       func() time.Time
	Logger    *slog.Logger
}

// Daemon keeps the widget entries current.
type Daemon struct {
	provider   *widget.Provider
	ns         store.Namespace
	publisher  Publisher
	configPath string
	now        func() time.Time
	logger     *slog.Logger

	refreshCh chan struct{}

	mu           sync.RWMutex
	cfg          *config.DaemonConfig
	snapshotPath string
	entries      []widget.Entry
	refreshAt    time.Time
	themeID      string
}

// New creates a Daemon serving entries from provider.
func New(provider *widget.Provider, opts Options) (*Daemon, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultDaemonConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Daemon{
		provider:   provider,
		ns:         opts.Namespace,
		publisher:  opts.Publisher,
		configPath: opts.ConfigPath,
		now:        opts.Now,
		logger:     opts.Logger,
		refreshCh:  make(chan struct{}, 1),
		cfg:        opts.Config,
	}
	if err := d.setSnapshotPath(opts.SnapshotPath, opts.Config); err != nil {
		return nil, err
	}
	return d, nil
}

// SetPublisher sets where change notifications are sent.
func (d *Daemon) SetPublisher(p Publisher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publisher = p
}

// Run regenerates entries until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.refreshLoop(ctx)
	})

	if w := d.namespaceWatcher(); w != nil {
		g.Go(func() error {
			if err := w.Start(); err != nil {
				d.logger.Warn("failed to watch shared namespace", "error", err)
				return nil
			}
			<-ctx.Done()
			return w.Stop()
		})
	}

	if d.configPath != "" {
		g.Go(func() error {
			cw := NewConfigWatcher(d.configPath, d.logger)
			cw.SetPollInterval(d.Config().Refresh.PollInterval.Duration())
			cw.SetReloadCallback(d.ApplyConfig)
			if err := cw.Start(ctx, d.Config()); err != nil {
				return err
			}
			<-ctx.Done()
			cw.Stop()
			return nil
		})
	}

	return g.Wait()
}

// Refresh asks the run loop to regenerate entries. It never blocks.
func (d *Daemon) Refresh() {
	select {
	case d.refreshCh <- struct{}{}:
	default:
	}
}

// ApplyConfig switches to cfg and regenerates entries.
func (d *Daemon) ApplyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	prev := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	if prev == nil || prev.Snapshot.Path != cfg.Snapshot.Path {
		if err := d.setSnapshotPath("", cfg); err != nil {
			d.logger.Warn("failed to resolve snapshot path", "error", err)
		}
	}
	d.Refresh()
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.DaemonConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Regenerate rebuilds entries for every configured set, writes the
// snapshot and publishes what changed.
func (d *Daemon) Regenerate() error {
	now := d.now()
	cfg := d.Config()

	var entries []widget.Entry
	for _, set := range cfg.MessageSets() {
		e, err := d.provider.Snapshot(set, now)
		if err != nil {
			if errors.Is(err, widget.ErrNoCatalog) {
				d.logger.Warn("skipping message set", "set", set, "error", err)
				continue
			}
			return err
		}
		entries = append(entries, e)
	}
	refreshAt := NextRefresh(now, d.provider.Location(), cfg.Refresh.Offset.Duration())
	themeID := d.provider.ThemeID()

	d.mu.Lock()
	changed := changedEntries(d.entries, entries)
	themeChanged := d.themeID != "" && d.themeID != themeID
	d.entries = entries
	d.refreshAt = refreshAt
	d.themeID = themeID
	snapshotPath := d.snapshotPath
	publisher := d.publisher
	d.mu.Unlock()

	d.logger.Debug("entries regenerated", "count", len(entries), "changed", len(changed), "refresh_at", refreshAt)

	var errs []error
	if cfg.Snapshot.Enabled && snapshotPath != "" {
		snap := &widget.SnapshotFile{Entries: entries, RefreshAt: refreshAt, WrittenAt: now}
		if err := widget.WriteSnapshot(snapshotPath, snap); err != nil {
			errs = append(errs, fmt.Errorf("write snapshot: %w", err))
		}
	}

	if publisher != nil {
		for _, e := range changed {
			if err := publisher.EntryChanged(e); err != nil {
				errs = append(errs, err)
			}
		}
		if themeChanged {
			if err := publisher.ThemeChanged(themeID); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Entries returns the current entries.
func (d *Daemon) Entries() []widget.Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.entries)
}

// Entry returns today's entry for set. Cached entries from an earlier day
// are not served: the entry is resolved again and a refresh is requested.
func (d *Daemon) Entry(set catalog.Set) (widget.Entry, error) {
	now := d.now()

	d.mu.RLock()
	idx := slices.IndexFunc(d.entries, func(e widget.Entry) bool { return e.Set == set })
	var cached widget.Entry
	if idx >= 0 {
		cached = d.entries[idx]
	}
	d.mu.RUnlock()

	if idx >= 0 {
		if selection.SameDay(cached.Day, now, d.provider.Location()) {
			return cached, nil
		}
		d.logger.Debug("cached entry is from an earlier day", "set", set, "day", cached.Day)
		d.Refresh()
	}
	return d.provider.Snapshot(set, now)
}

// RefreshAt returns when the current entries go stale.
func (d *Daemon) RefreshAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.refreshAt
}

// ThemeID returns the theme entries are rendered with.
func (d *Daemon) ThemeID() string {
	return d.provider.ThemeID()
}

// Sets returns the configured message sets.
func (d *Daemon) Sets() []catalog.Set {
	return d.Config().MessageSets()
}

// SnapshotPath returns where the snapshot file is written.
func (d *Daemon) SnapshotPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotPath
}

func (d *Daemon) refreshLoop(ctx context.Context) error {
	for {
		if err := d.Regenerate(); err != nil {
			d.logger.Warn("failed to regenerate widget entries", "error", err)
		}

		if !d.wait(ctx) {
			return nil
		}
	}
}

// wait blocks until the entries are due, a refresh is requested or ctx is
// done. It reports false when ctx is done.
func (d *Daemon) wait(ctx context.Context) bool {
	for {
		delay := wakeInterval
		if next := d.RefreshAt(); !next.IsZero() {
			delay = min(next.Sub(d.now()), wakeInterval)
			if delay <= 0 {
				return true
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-d.refreshCh:
			timer.Stop()
			return true
		case <-timer.C:
		}
	}
}

// namespaceWatcher returns a watcher that refreshes on theme and selection
// writes, or nil when the namespace cannot be watched.
func (d *Daemon) namespaceWatcher() *store.Watcher {
	if d.ns == nil {
		return nil
	}
	w, err := store.NewWatcher(d.ns, d.onNamespaceChange, d.logger)
	if err != nil {
		d.logger.Debug("shared namespace not watchable", "error", err)
		return nil
	}
	return w
}

func (d *Daemon) onNamespaceChange(key string) {
	if key == "" || key == selection.ThemeKey || strings.HasPrefix(key, selection.RecordKeyPrefix) {
		d.logger.Debug("shared namespace changed", "key", key)
		d.Refresh()
	}
}

func (d *Daemon) setSnapshotPath(override string, cfg *config.DaemonConfig) error {
	path := override
	if path == "" {
		path = cfg.SnapshotPath()
	}
	if path == "" {
		var err error
		if path, err = widget.DefaultSnapshotPath(); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.snapshotPath = path
	d.mu.Unlock()
	return nil
}

// changedEntries returns the entries in next that differ from prev in item
// or theme.
func changedEntries(prev, next []widget.Entry) []widget.Entry {
	var out []widget.Entry
	for _, e := range next {
		idx := slices.IndexFunc(prev, func(p widget.Entry) bool { return p.Set == e.Set })
		if idx < 0 || prev[idx].ItemID != e.ItemID || prev[idx].ThemeID != e.ThemeID || !prev[idx].Day.Equal(e.Day) {
			out = append(out, e)
		}
	}
	return out
}
