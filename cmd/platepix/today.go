package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/adapter/output"
	"github.com/jmylchreest/platepix/internal/selection"
	"github.com/jmylchreest/platepix/internal/widget"
)

var todayOpts struct {
	format   string
	template string
	width    int
}

var todayCmd = &cobra.Command{
	Use:   "today [set...]",
	Short: "Print today's messages",
	Long: `Print today's item for each message set (motivations, reminders).

The first call on a new day picks a new item, never the same one as the
previous day when the catalog has more than one. Later calls that day,
from platepix or platepixd, return the same item.

Output formats:
  plain   "Title: text" per line, or a custom --template
  json    full entries as a JSON array
  waybar  a Waybar custom module object
  card    themed terminal cards`,
	Example: `  platepix today
  platepix today motivations -o card
  platepix today --template '{{.ItemID}} {{.Text}}'`,
	RunE: runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)

	todayCmd.Flags().StringVarP(&todayOpts.format, "output", "o", "plain",
		"Output format: plain, json, waybar, card")
	todayCmd.Flags().StringVar(&todayOpts.template, "template", "",
		"Go template for plain output (default: from config)")
	todayCmd.Flags().IntVar(&todayOpts.width, "width", 0,
		"Card width for card output")
}

func runToday(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(todayOpts.format)
	if err != nil {
		return err
	}
	sets, err := parseSets(args)
	if err != nil {
		return err
	}

	now := time.Now()
	entries := make([]widget.Entry, 0, len(sets))
	for _, set := range sets {
		e, err := provider.Snapshot(set, now)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	tmpl := todayOpts.template
	if tmpl == "" {
		tmpl = cfg.GetTemplate("plain")
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = tmpl
	opts.Width = todayOpts.width
	opts.RefreshAt = selection.NextDay(now, provider.Location())

	return output.NewFormatter(format, opts).Format(os.Stdout, entries)
}
