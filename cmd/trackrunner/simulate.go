package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"trackrunner/internal/game"
	"trackrunner/internal/journal"
	"trackrunner/internal/mapplot"
	"trackrunner/internal/track"
)

var (
	simTicks   int
	simSeed    uint64
	simPlot    string
	simJournal string

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run the autopilot without a window and print what happened",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
)

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simTicks, "ticks", 0, "ticks to run, 0 uses run.ticks from the config")
	f.Uint64Var(&simSeed, "seed", 0, "track seed, 0 uses run.seed from the config")
	f.StringVar(&simPlot, "plot", "", "write a map of the track to this .png/.svg/.pdf")
	f.StringVar(&simJournal, "journal", "", "record the run in this SQLite file")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts := game.HeadlessOptions{
		Seed:    cfg.Run.Seed,
		Ticks:   cfg.Run.Ticks,
		Logger:  logger,
		Metrics: track.NewMetrics(prometheus.NewRegistry()),
	}
	if simSeed != 0 {
		opts.Seed = simSeed
	}
	if simTicks != 0 {
		opts.Ticks = simTicks
	}
	if simPlot != "" {
		opts.Map = mapplot.New()
	}
	if simJournal != "" {
		j, err := journal.Open(simJournal, logger)
		if err != nil {
			return err
		}
		defer j.Close()
		opts.Journal = j
	}

	sum, err := game.RunHeadless(cmd.Context(), cfg, opts)
	if err != nil {
		return err
	}
	if opts.Map != nil {
		if err := opts.Map.Save(simPlot, fmt.Sprintf("seed %d", sum.Seed), 8*vg.Inch); err != nil {
			return err
		}
		logger.Info("map written", "path", simPlot, "segments", opts.Map.Segments())
	}
	return printSummary(sum)
}

func printSummary(sum game.RunSummary) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	rows := []struct {
		k string
		v any
	}{
		{"seed", sum.Seed},
		{"run", sum.RunID},
		{"outcome", sum.Outcome},
		{"ticks", sum.Ticks},
		{"elapsed", fmt.Sprintf("%.1fs", sum.Elapsed)},
		{"distance", fmt.Sprintf("%.1f", sum.Distance)},
		{"junctions", sum.Junctions},
		{"spawned", sum.Spawned},
		{"retired", sum.Retired},
		{"discarded", sum.Discarded},
		{"cleared", sum.Cleared},
		{"live segments", sum.Live},
		{"stage objects", sum.Objects},
	}
	for _, r := range rows {
		if r.k == "run" && sum.RunID == "" {
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", r.k, r.v)
	}
	return w.Flush()
}
