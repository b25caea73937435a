package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/KyungWonPark/GraphTheory/internal/atlas"
	"github.com/KyungWonPark/GraphTheory/internal/config"
	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
	"github.com/KyungWonPark/GraphTheory/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, volume string

	cmd := &cobra.Command{
		Use:   "atlas-census",
		Short: "Count voxels per AICHA node and mark the nodes kept in SENSAAS",
		Long: `atlas-census reads the AICHA label volume, counts the voxels carrying each
node's label value, and reports for every node whether the SENSAAS atlas keeps it.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if volume != "" {
				cfg.Census.Volume = volume
			}

			nodes, err := atlas.LoadIndexedNames(cfg.Remap.SourceLabels)
			if err != nil {
				return err
			}
			target, err := atlas.LoadNames(cfg.Remap.TargetLabels)
			if err != nil {
				return err
			}

			vol, err := atlas.LoadVolume(cfg.Census.Volume)
			if err != nil {
				return err
			}
			if err := atlas.CheckDims(vol, cfg.Census.Dims); err != nil {
				return fmt.Errorf("%s: %w", cfg.Census.Volume, err)
			}
			counts := atlas.Census(vol)

			rows := atlas.BuildCensus(nodes, counts, target)
			kept := 0
			for _, r := range rows {
				if r.InTarget {
					kept++
				}
				if r.Voxels == 0 {
					log.Warn("node has no voxels in volume", "node", r.Name, "index", r.Index)
				}
			}

			if err := writeCensus(cfg.Census.Output, rows); err != nil {
				return err
			}

			log.Info("census complete", "nodes", len(rows), "kept", kept, "labels", len(counts))
			fmt.Fprintf(cmd.OutOrStdout(), "Census saved to %s\n", cfg.Census.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (default $GT_CONFIG)")
	cmd.Flags().StringVar(&volume, "volume", "", "atlas label volume (.nii or .nii.gz), overrides census.volume")
	return cmd
}

func writeCensus(path string, rows []atlas.CensusRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			strconv.Itoa(r.Index),
			r.Name,
			strconv.Itoa(r.Voxels),
			strconv.FormatBool(r.InTarget),
		}
	}
	return gtio.WriteTable(path, []string{"Index", "Node Name", "Voxels", "In Target"}, records)
}
