package main

import (
	"fmt"
	"os"
	"strings"

	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:           "npy2csv <file.npy>",
		Short:         "Dump a 2D npy matrix as CSV",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			fileName := args[0]

			matrix, err := gtio.NpytoMat64(fileName)
			if err != nil {
				return err
			}
			rows, cols := matrix.Dims()
			fmt.Fprintf(cmd.OutOrStdout(), "Read %s: %d by %d\n", fileName, rows, cols)

			if outPath == "" {
				outPath = strings.TrimSuffix(fileName, ".npy") + ".csv"
			}
			if err := gtio.Mat64toCSV(outPath, matrix); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output CSV (default <file>.csv)")
	return cmd
}
