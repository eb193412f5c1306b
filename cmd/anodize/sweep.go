package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"anodize-ca/internal/sims/anodize"
	"anodize-ca/internal/sweep"
)

type sweepOptions struct {
	pBond     []float64
	pFieldGen []float64
	pAnion    []float64
	steps     int
	jobs      int
	top       int
}

func newSweepCmd(a *app) *cobra.Command {
	var o sweepOptions
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a grid of parameter sets and rank them by oxide grown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sweep(cmd, o)
		},
	}
	f := cmd.Flags()
	f.Float64SliceVar(&o.pBond, "p-bond", nil, "p_bond values")
	f.Float64SliceVar(&o.pFieldGen, "p-field-gen", nil, "p_field_gen values")
	f.Float64SliceVar(&o.pAnion, "p-anion", nil, "p_anion values")
	f.IntVar(&o.steps, "steps", 0, "steps per simulation")
	f.IntVar(&o.jobs, "jobs", runtime.NumCPU(), "simulations run concurrently")
	f.IntVar(&o.top, "top", 5, "number of ranked results to print, 0 for all")
	return cmd
}

func (a *app) sweep(cmd *cobra.Command, o sweepOptions) error {
	base := a.cfg.Simulation()
	if cmd.Flags().Changed("steps") {
		base.TotalSteps = o.steps
	}
	if err := base.Validate(); err != nil {
		return err
	}
	points := sweep.Grid(base.Params, o.pBond, o.pFieldGen, o.pAnion)
	a.logger.Info("sweep started",
		slog.Int("points", len(points)),
		slog.Int("jobs", o.jobs),
		slog.Int("steps", base.TotalSteps),
	)

	start := time.Now()
	results := sweep.Run(cmd.Context(), base, points, o.jobs)
	a.logger.Info("sweep finished", slog.Duration("elapsed", time.Since(start)))

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPARAMS\tOXIDE\tFIELD\tANION\tFRONT\tCONFLICTS\tELAPSED")
	var failed []sweep.Result
	rank := 0
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		rank++
		if o.top > 0 && rank > o.top {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			rank, r.Point, r.Counts[anodize.Oxide], r.Counts[anodize.ElectricField], r.Counts[anodize.Anion],
			r.Front, r.Conflicts, r.Elapsed.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, r := range failed {
		fmt.Fprintf(out, "failed: %s: %v\n", r.Point, r.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d parameter sets failed", len(failed), len(results))
	}
	return nil
}
