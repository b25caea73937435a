package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/KyungWonPark/GraphTheory/internal/config"
	"github.com/KyungWonPark/GraphTheory/internal/logging"
	"github.com/KyungWonPark/GraphTheory/internal/remap"
	"github.com/spf13/cobra"
)

var modes = []string{"length", "streamline"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "aicha2sensaas <mode>",
		Short: "Convert AICHA connectivity matrices to the SENSAAS atlas",
		Long: `aicha2sensaas keeps the AICHA nodes that also exist in the SENSAAS atlas
and writes each subject's reduced matrix as sensaas_<MODE>_<subject>.npy.

Mode: "length" or "streamline".`,
		Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:     modes,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())

			report, err := remap.Run(cfg.Remap, args[0], log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s conversion complete! %d files saved in %s (%d nodes)\n",
				capitalize(report.Mode), len(report.Converted), report.OutputDir, report.Nodes)
			if len(report.Failed) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d files failed:\n", len(report.Failed))
				for _, r := range report.Failed {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", r.Input, r.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default $GT_CONFIG)")
	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
