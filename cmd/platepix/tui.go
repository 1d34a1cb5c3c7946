package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/platepix/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive home screen",
	Long: `Launch the terminal home screen showing today's messages.

Key bindings:
  t           Next theme (shared with the widget)
  m           Toggle the daily reminder
  c           Copy today's motivation to clipboard
  r           Refresh
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(tui.Options{
		Provider:  provider,
		Service:   selector,
		Namespace: namespace,
		Config:    cfg,
		Logger:    logger,
	})
}
