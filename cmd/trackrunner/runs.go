package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trackrunner/internal/journal"
)

var (
	runsJournal string

	runsCmd = &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs, or show the event counts of one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRuns,
	}
)

func init() {
	runsCmd.Flags().StringVar(&runsJournal, "journal", "", "journal file, defaults to desktop.journal from the config")
}

func runRuns(cmd *cobra.Command, args []string) error {
	path := runsJournal
	if path == "" {
		path = cfg.Desktop.Journal
	}
	if path == "" {
		return errors.New("no journal: pass --journal or set desktop.journal")
	}
	j, err := journal.Open(path, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(args) == 1 {
		sum, err := j.Summary(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "run\t%s\nseed\t%d\noutcome\t%s\ndistance\t%.1f\nevents\t%d\n",
			sum.ID, sum.Seed, sum.Outcome, sum.Distance, sum.Total)
		types := make([]string, 0, len(sum.Counts))
		for t := range sum.Counts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(w, "  %s\t%d\n", t, sum.Counts[t])
		}
		return w.Flush()
	}

	runs, err := j.Runs(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tSEED\tSTARTED\tDURATION\tDISTANCE\tOUTCOME")
	for _, r := range runs {
		dur := "-"
		if !r.EndedAt.IsZero() {
			dur = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.1f\t%s\n",
			r.ID, r.Seed, r.StartedAt.Local().Format(time.DateTime), dur, r.Distance, r.Outcome)
	}
	return w.Flush()
}
