package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"anodize-ca/internal/export"
	"anodize-ca/internal/metrics"
	"anodize-ca/internal/sims/anodize"
)

type runOptions struct {
	steps       int
	seed        int64
	workers     int
	statsDB     string
	metricsAddr string
	slice       string
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and print the sampled statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.steps, "steps", 0, "total steps")
	f.Int64Var(&o.seed, "seed", 0, "random seed")
	f.IntVar(&o.workers, "workers", 0, "goroutines per pass, 0 for GOMAXPROCS")
	f.StringVar(&o.statsDB, "stats-db", "", "SQLite database receiving the run statistics")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&o.slice, "slice", "", "print a slice after the run, e.g. xz=25 or z=10")
	return cmd
}

func (a *app) run(cmd *cobra.Command, o runOptions) error {
	f := a.cfg
	flags := cmd.Flags()
	if flags.Changed("steps") {
		f.Run.Steps = o.steps
	}
	if flags.Changed("seed") {
		f.Run.Seed = o.seed
	}
	if flags.Changed("workers") {
		f.Run.Workers = o.workers
	}
	if flags.Changed("stats-db") {
		f.Export.SQLitePath = o.statsDB
	}
	if flags.Changed("metrics-addr") {
		f.Metrics.Addr = o.metricsAddr
	}
	if err := f.Validate(); err != nil {
		return err
	}
	var (
		axis  anodize.Axis
		index int
	)
	if o.slice != "" {
		var err error
		if axis, index, err = anodize.ParseSlice(o.slice); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []anodize.Option{anodize.WithLogger(a.logger)}
	if f.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, anodize.WithObserver(metrics.NewRecorder(reg)))
		shutdown, err := serveMetrics(f.Metrics.Addr, reg, a.logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	sim, err := anodize.New(f.Simulation(), opts...)
	if err != nil {
		return err
	}

	var (
		store *export.Store
		runID string
	)
	if f.Export.SQLitePath != "" {
		store, err = export.Open(ctx, f.Export.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if runID, err = store.BeginRun(ctx, sim.Config(), sim.Seed()); err != nil {
			return err
		}
		a.logger.Info("recording statistics",
			slog.String("db", f.Export.SQLitePath),
			slog.String("run_id", runID),
		)
	}

	progress := rate.Sometimes{Interval: 2 * time.Second}
	var runErr error
	for st, err := range sim.Run(ctx) {
		if err != nil {
			runErr = err
			break
		}
		progress.Do(func() {
			a.logger.Info("progress",
				slog.Int("step", st.Step),
				slog.Int("total_steps", f.Run.Steps),
				slog.Int("oxide", st.Counts[anodize.Oxide]),
				slog.Int("field", st.Counts[anodize.ElectricField]),
			)
		})
	}

	if store != nil {
		// An interrupted run is still recorded.
		wctx := context.WithoutCancel(ctx)
		if err := store.WriteSteps(wctx, runID, sim.Statistics()); err != nil {
			return errors.Join(runErr, err)
		}
		if err := store.FinishRun(wctx, runID, sim.Status(), sim.StepIndex()); err != nil {
			return errors.Join(runErr, err)
		}
	}

	out := cmd.OutOrStdout()
	if err := writeStats(out, sim.Statistics()); err != nil {
		return errors.Join(runErr, err)
	}
	if o.slice != "" {
		plane, err := sim.Slice(axis, index)
		if err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Fprintf(out, "\nslice %s=%d after step %d\n", axis, index, sim.StepIndex())
		for _, row := range plane.Rows() {
			fmt.Fprintln(out, row)
		}
	}
	return runErr
}

func writeStats(w io.Writer, stats []anodize.StepStatistics) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tELAPSED\tMETAL\tOXIDE\tFIELD\tANION\tSOLVENT\tAPPLIED\tCONFLICTS")
	for _, st := range stats {
		c := st.Counts
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			st.Step, st.Elapsed.Round(time.Millisecond),
			c[anodize.Metal], c[anodize.Oxide], c[anodize.ElectricField], c[anodize.Anion], c[anodize.Solvent],
			st.Applied(), st.Conflicts)
	}
	return tw.Flush()
}

func serveMetrics(addr string, g prometheus.Gatherer, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(g))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
