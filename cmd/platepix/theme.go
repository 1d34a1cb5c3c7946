package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/theme"
)

// themeCmd represents the theme command group.
var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the display theme",
	Long: `Show or change the theme shared with the platepixd widget.

The widget renders with the theme most recently used by the app.`,
	RunE: themeGetRun,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available themes",
	RunE:  themeListRun,
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the active theme",
	RunE:  themeGetRun,
}

var themeSetCmd = &cobra.Command{
	Use:       "set <theme>",
	Short:     "Change the active theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: theme.List(),
	RunE:      themeSetRun,
}

var themeNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Switch to the next theme",
	RunE:  themeNextRun,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeGetCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeNextCmd)

	rootCmd.AddCommand(themeCmd)
}

func themeListRun(cmd *cobra.Command, args []string) error {
	active := provider.ThemeID()
	for _, id := range theme.List() {
		t, err := theme.Load(id)
		if err != nil {
			return err
		}
		marker := " "
		if id == active {
			marker = "*"
		}
		fmt.Printf("%s %-10s %s\n", marker, id, t.Styles().Accent.Render(t.Name))
	}
	return nil
}

func themeGetRun(cmd *cobra.Command, args []string) error {
	fmt.Println(provider.ThemeID())
	return nil
}

func themeSetRun(cmd *cobra.Command, args []string) error {
	return setTheme(args[0])
}

func themeNextRun(cmd *cobra.Command, args []string) error {
	return setTheme(theme.Next(provider.ThemeID()))
}

func setTheme(id string) error {
	if !theme.Exists(id) {
		return fmt.Errorf("%w: %q", theme.ErrUnknownTheme, id)
	}
	if _, err := requireNamespace(); err != nil {
		return err
	}

	selector.RecordDisplayedTheme(id)
	if got, ok := selector.DisplayedTheme(); !ok || got != id {
		return fmt.Errorf("failed to record theme %q", id)
	}

	fmt.Printf("Theme: %s\n", id)
	return nil
}
