package main

import (
	"fmt"
	"os"

	"github.com/KyungWonPark/GraphTheory/internal/config"
	"github.com/KyungWonPark/GraphTheory/internal/logging"
	"github.com/KyungWonPark/GraphTheory/internal/results"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "regional-metrics",
		Short: "Collect per-node network measures of every subject into one CSV",
		Long: `regional-metrics reads nodal strength, path length, local efficiency and
clustering for every node of every result document, tags each node with its
anatomical group, and writes one row per subject and node. A per-node
summary across subjects is written alongside.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())

			schema := results.DefaultSchema()
			if cfg.Results.NodeTable != "" {
				if schema, err = results.LoadSchema(cfg.Results.NodeTable, results.DefaultGroups); err != nil {
					return err
				}
			}

			rows, err := results.ExtractRegional(cfg.Results, schema, log)
			if err != nil {
				return err
			}
			if err := results.WriteRegional(cfg.Results.RegionalOutput, rows); err != nil {
				return err
			}
			if err := results.WriteSummary(cfg.Results.SummaryOutput, results.Summarize(rows)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Regional network measures saved to %s\n", cfg.Results.RegionalOutput)
			header, records := results.RegionalTable(rows)
			return results.PrintHead(cmd.OutOrStdout(), header, records, 5)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default $GT_CONFIG)")
	return cmd
}
