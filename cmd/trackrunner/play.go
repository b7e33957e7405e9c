//go:build !android && !headless

package main

import (
	"github.com/spf13/cobra"

	"trackrunner/internal/game/desktop"
)

var (
	playSeed      uint64
	playAutopilot bool
	playMetrics   string

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Open a window and run",
		Long: `Space starts a run, A/W/D or the arrow keys pick the way out of a
junction, P toggles the autopilot, E/R zoom and Esc quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				cfg.Run.Seed = playSeed
			}
			if cmd.Flags().Changed("autopilot") {
				cfg.Run.Autopilot = playAutopilot
			}
			if playMetrics != "" {
				cfg.Desktop.MetricsAddr = playMetrics
			}
			return desktop.Run(cmd.Context(), cfg, logger)
		},
	}
)

func init() {
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "seed of the first run (0 picks one from the clock)")
	playCmd.Flags().BoolVar(&playAutopilot, "autopilot", false, "let the runner choose at junctions")
	playCmd.Flags().StringVar(&playMetrics, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(playCmd)
}
