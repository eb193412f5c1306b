package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"anodize-ca/internal/config"
	"anodize-ca/internal/sims/anodize"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The persistent pre-run already rejected an invalid configuration.
			c := a.cfg.Simulation()
			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: %dx%dx%d lattice, %d steps, seed %d\n",
				c.Size.X, c.Size.Y, c.Size.Z, c.TotalSteps, c.Seed)
			return nil
		},
	}
}

func newParamsCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the effective parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asYAML {
				data, err := config.Marshal(a.cfg)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}
			c := a.cfg.Simulation()
			snap := anodize.ParametersOf(c, c.Seed)
			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			for i, g := range snap.Groups {
				if i > 0 {
					fmt.Fprintln(tw)
				}
				fmt.Fprintf(tw, "[%s]\n", g.Name)
				for _, p := range g.Params {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key, p.Value, p.Description)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the configuration as YAML")
	return cmd
}
