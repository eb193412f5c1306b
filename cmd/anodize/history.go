package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"anodize-ca/internal/export"
)

func newHistoryCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or the statistics of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("stats-db") {
				dbPath = a.cfg.Export.SQLitePath
			}
			if dbPath == "" {
				return errors.New("no statistics database: pass --stats-db or set export.sqlite_path")
			}
			ctx := cmd.Context()
			store, err := export.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				steps, err := store.Steps(ctx, args[0])
				if err != nil {
					return err
				}
				if len(steps) == 0 {
					if _, err := store.Config(ctx, args[0]); err != nil {
						return err
					}
				}
				return writeStats(out, steps)
			}

			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tLATTICE\tSTEPS\tSEED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%dx%d\t%d/%d\t%d\n",
					r.ID, r.StartedAt.Format(time.DateTime), r.Status,
					r.NX, r.NY, r.NZ, r.StepsRun, r.TotalSteps, r.Seed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "stats-db", "", "SQLite database written by run --stats-db")
	return cmd
}
