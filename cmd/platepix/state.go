package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/store"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the shared selection state",
	Long: `Show what is stored in the shared namespace: the current item per
message set, when it was chosen, and the last displayed theme.

Reading state never selects a new item.`,
	RunE: runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	ns, err := requireNamespace()
	if err != nil {
		return err
	}

	if loc, ok := ns.(store.Locator); ok {
		fmt.Printf("Namespace: %s (%s)\n", cfg.Group.ID, loc.Location())
	} else {
		fmt.Printf("Namespace: %s (%s)\n", cfg.Group.ID, cfg.Store.Backend)
	}

	now := time.Now()
	for _, set := range provider.Sets() {
		rec, ok := selector.Record(set)
		if !ok {
			fmt.Printf("%-12s no selection yet\n", set)
			continue
		}

		key := "(not in catalog)"
		if item, found := catalogs[set].Lookup(rec.SelectedID); found {
			key = item.Key
		}
		when := humanize.Time(rec.SelectedDate)
		if !selection.SameDay(rec.SelectedDate, now, selector.Location()) {
			when += ", stale"
		}
		fmt.Printf("%-12s #%d %s, chosen %s\n", set, rec.SelectedID, key, when)
	}

	if id, ok := selector.DisplayedTheme(); ok {
		fmt.Printf("%-12s %s\n", "theme", id)
	} else {
		fmt.Printf("%-12s %s (not recorded)\n", "theme", provider.ThemeID())
	}

	settings, err := store.LoadSettings(ns)
	if err != nil {
		return err
	}
	printSettings(settings)
	return nil
}
