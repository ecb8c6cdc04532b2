package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/barscan/internal/benchmark"
	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		iterations int
		output     string
		scenarios  []string
		tryHarder  bool
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure the scan pipeline on synthetic degraded barcodes",
		Long: `Render a set of degraded EAN-13 captures (rotations, blur, low contrast,
skew, blank frames), scan each one repeatedly and report the tier that
recovered it, the attempt count, latency and allocations.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			sc, err := pipeline.NewBuilder().WithTryHarder(tryHarder).Build()
			if err != nil {
				return err
			}
			selected := benchmark.FilterScenarios(benchmark.DefaultScenarios(), scenarios)
			if len(selected) == 0 {
				return fmt.Errorf("no scenarios match %v", scenarios)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Running %d scenarios with %d iterations each...\n", len(selected), iterations)
			suite := benchmark.NewSuite(sc)
			results, err := suite.Run(cmd.Context(), selected, iterations)
			suite.PrintResults(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if output != "" {
				f, err := os.Create(output) //nolint:gosec // G304: user supplied output path
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				if err := benchmark.WriteCSV(f, results); err != nil {
					return fmt.Errorf("failed to write results: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 3, "scans per scenario")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV results to this file")
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "only run these scenarios")
	cmd.Flags().BoolVar(&tryHarder, "try-harder", true, "let the decoder scan more rows per candidate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every decode attempt")
	return cmd
}
