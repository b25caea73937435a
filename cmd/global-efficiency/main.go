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
		Use:           "global-efficiency",
		Short:         "Collect each subject's global efficiency into one CSV",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())

			rows, err := results.ExtractGlobal(cfg.Results, log)
			if err != nil {
				return err
			}
			if err := results.WriteGlobal(cfg.Results.GlobalOutput, cfg.Results.GlobalColumn, rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Global efficiency data saved to %s\n", cfg.Results.GlobalOutput)
			header, records := results.GlobalTable(cfg.Results.GlobalColumn, rows)
			return results.PrintHead(cmd.OutOrStdout(), header, records, 5)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default $GT_CONFIG)")
	return cmd
}
