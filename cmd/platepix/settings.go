package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/store"
)

var settingsOpts struct {
	reminder string
	at       string
}

// settingsCmd represents the settings command group.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change app settings",
	Long: `Show or change settings kept in the shared namespace.

The daily reminder time is stored for the widget process; platepix does
not schedule notifications itself.`,
	RunE: settingsShowRun,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  settingsShowRun,
}

var settingsSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Change settings",
	Example: "  platepix settings set --reminder on --at 18:30",
	RunE:    settingsSetRun,
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsOpts.reminder, "reminder", "",
		"Daily reminder: on or off")
	settingsSetCmd.Flags().StringVar(&settingsOpts.at, "at", "",
		"Reminder time as HH:MM")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	rootCmd.AddCommand(settingsCmd)
}

func settingsShowRun(cmd *cobra.Command, args []string) error {
	ns, err := requireNamespace()
	if err != nil {
		return err
	}
	s, err := store.LoadSettings(ns)
	if err != nil {
		return err
	}
	printSettings(s)
	return nil
}

func settingsSetRun(cmd *cobra.Command, args []string) error {
	ns, err := requireNamespace()
	if err != nil {
		return err
	}
	s, err := store.LoadSettings(ns)
	if err != nil {
		return err
	}

	enabled := s.ReminderEnabled
	switch settingsOpts.reminder {
	case "":
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("invalid --reminder %q, must be on or off", settingsOpts.reminder)
	}
	if settingsOpts.reminder == "" && settingsOpts.at == "" {
		return fmt.Errorf("nothing to change, use --reminder and/or --at")
	}

	if err := s.SetReminder(enabled, settingsOpts.at, "cli"); err != nil {
		return err
	}
	if err := store.SaveSettings(ns, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	printSettings(s)
	return nil
}

func printSettings(s *store.Settings) {
	state := "off"
	if s.ReminderEnabled {
		state = "on"
	}
	fmt.Printf("%-12s %s at %s\n", "reminder", state, s.ReminderTime)
	if s.UpdatedAt > 0 {
		fmt.Printf("%-12s %s by %s\n", "updated", humanize.Time(time.Unix(s.UpdatedAt, 0)), s.UpdatedBy)
	}
}
