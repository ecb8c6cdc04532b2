package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/barscan/internal/benchmark"
	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		outDir    string
		scenarios []string
	)
	cmd := &cobra.Command{
		Use:   "generate-test-data",
		Short: "Write synthetic barcode captures and a manifest for manual testing",
		Example: `  generate-test-data
  generate-test-data --out /tmp/barcodes --scenario upright --scenario skewed-7`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir == "" {
				root, err := testutil.GetProjectRoot()
				if err != nil {
					return fmt.Errorf("failed to find project root: %w", err)
				}
				outDir = filepath.Join(root, "testdata", "barcodes")
			}
			selected := benchmark.FilterScenarios(benchmark.DefaultScenarios(), scenarios)
			slog.Info("Generating test data", "dir", outDir, "scenarios", len(selected))

			entries, err := benchmark.WriteFixtures(outDir, selected)
			if err != nil {
				return err
			}
			for _, e := range entries {
				slog.Info("Wrote fixture", "file", e.File, "want", e.Want)
			}
			slog.Info("Test data generation complete", "manifest", filepath.Join(outDir, benchmark.ManifestFileName))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <project>/testdata/barcodes)")
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "only generate these scenarios")
	return cmd
}
