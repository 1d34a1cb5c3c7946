package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/adapter/output"
	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/widget"
)

var statusOpts struct {
	set          string
	fromSnapshot bool
	snapshotPath string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output today's message in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/platepix": {
    "exec": "platepix status",
    "interval": 600,
    "return-type": "json",
    "on-click": "platepix tui"
  }

With --from-snapshot the entries written by platepixd are used when they
are still current, so the bar never touches the shared store.

The output includes:
  - text: today's message
  - alt: the message set
  - tooltip: every message set plus the next refresh
  - class: the active theme, or "placeholder"`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusOpts.set, "set", "",
		"Message set shown as bar text (default: widget.message_set from config)")
	statusCmd.Flags().BoolVar(&statusOpts.fromSnapshot, "from-snapshot", false,
		"Prefer the snapshot written by platepixd")
	statusCmd.Flags().StringVar(&statusOpts.snapshotPath, "snapshot", "",
		"Snapshot path (default: ~/.local/share/platepix/widget.json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	primary := cfg.MessageSet()
	if statusOpts.set != "" {
		set, err := catalog.ParseSet(statusOpts.set)
		if err != nil {
			return err
		}
		primary = set
	}

	now := time.Now()
	entries, refreshAt := statusFromSnapshot(now)
	if entries == nil {
		for _, set := range provider.Sets() {
			e, err := provider.Snapshot(set, now)
			if err != nil {
				e = provider.Placeholder(set)
			}
			entries = append(entries, e)
		}
		refreshAt = selection.NextDay(now, provider.Location())
	}

	f := output.NewWaybarFormatter(output.FormatterOptions{RefreshAt: refreshAt})
	return f.Format(os.Stdout, primaryFirst(entries, primary))
}

// statusFromSnapshot returns the daemon's entries when requested and fresh.
func statusFromSnapshot(now time.Time) ([]widget.Entry, time.Time) {
	if !statusOpts.fromSnapshot {
		return nil, time.Time{}
	}

	path := statusOpts.snapshotPath
	if path == "" {
		var err error
		if path, err = widget.DefaultSnapshotPath(); err != nil {
			logger.Debug("no snapshot path", "error", err)
			return nil, time.Time{}
		}
	}

	snap, err := widget.ReadSnapshot(path)
	if err != nil {
		logger.Warn("failed to read snapshot", "path", path, "error", err)
		return nil, time.Time{}
	}
	if snap == nil || snap.Stale(now) || len(snap.Entries) == 0 {
		logger.Debug("snapshot missing or stale", "path", path)
		return nil, time.Time{}
	}
	return snap.Entries, snap.RefreshAt
}

// primaryFirst moves the entry for set to the front.
func primaryFirst(entries []widget.Entry, set catalog.Set) []widget.Entry {
	out := make([]widget.Entry, 0, len(entries))
	var rest []widget.Entry
	for _, e := range entries {
		if e.Set == set {
			out = append(out, e)
		} else {
			rest = append(rest, e)
		}
	}
	return append(out, rest...)
}
