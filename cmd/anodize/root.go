package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"anodize-ca/internal/config"
)

// app carries the state shared by every subcommand once the persistent
// pre-run has loaded the configuration.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.File
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "anodize",
		Short: "Stochastic 3D cellular automaton of metal anodization",
		Long: `anodize grows a porous oxide layer on a metal slab with a rule-based
3D cellular automaton and reports per-step cell statistics.

Configuration is read from built-in defaults, then the optional --config YAML
file, then ANODIZE_* environment variables, then command line flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: auto, text or json")

	root.AddCommand(
		newRunCmd(a),
		newValidateCmd(a),
		newParamsCmd(a),
		newSweepCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	f, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		f.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		f.Log.Format = a.logFormat
	}
	if err := f.Validate(); err != nil {
		return err
	}
	a.cfg = f
	a.logger = newLogger(cmd.ErrOrStderr(), f.Log)
	return nil
}

// newLogger builds the slog handler. "auto" picks text on a terminal and
// JSON otherwise.
func newLogger(w io.Writer, l config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	format := l.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "text"
		}
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
