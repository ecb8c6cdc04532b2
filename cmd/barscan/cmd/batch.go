package cmd

import (
	"github.com/MeKo-Tech/barscan/internal/batch"
	"github.com/spf13/cobra"
)

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Scan directories of product photos in parallel",
		Long: `Discover images in the given files and directories and scan them on a
worker pool. Results keep the discovery order.

Examples:
  barscan batch ./photos
  barscan batch --recursive --include "*.jpg" --exclude "thumb_*" ./photos
  barscan batch --workers 8 --format json --output results.json ./photos`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()

			bc := batch.DefaultConfig()
			bc.Pipeline = cfg.ToPipelineConfig()
			bc.DebugDir = stringFlag(cmd, "debug-dir", cfg.Scan.DebugDir)
			bc.Format = stringFlag(cmd, "format", cfg.Output.Format)
			bc.OutputFile = stringFlag(cmd, "output", cfg.Output.File)
			bc.Workers = intFlag(cmd, "workers", cfg.Batch.Workers)
			bc.Recursive = boolFlag(cmd, "recursive", cfg.Batch.Recursive)
			bc.ContinueOnError = boolFlag(cmd, "continue-on-error", cfg.Batch.ContinueOnError)
			bc.ShowProgress = boolFlag(cmd, "progress", cfg.Batch.Progress)
			bc.IncludePatterns = sliceFlag(cmd, "include", cfg.Batch.Include)
			bc.ExcludePatterns = sliceFlag(cmd, "exclude", cfg.Batch.Exclude)
			bc.Quiet, _ = cmd.Flags().GetBool("quiet")

			res, err := batch.ProcessBatch(cmd.Context(), args, bc)
			if res != nil {
				if saveErr := res.SaveResults(cmd.OutOrStdout(), bc.Format, bc.OutputFile); saveErr != nil {
					return saveErr
				}
				if stats, _ := cmd.Flags().GetBool("stats"); stats && !bc.Quiet {
					res.PrintStats(cmd.ErrOrStderr())
				}
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringP("format", "f", "text", "output format: text, json, csv")
	f.StringP("output", "o", "", "write results to this file instead of stdout")
	f.String("debug-dir", "", "write every candidate image to this directory")
	f.IntP("workers", "w", 4, "number of parallel workers")
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.StringSlice("include", nil, "only scan files matching these glob patterns")
	f.StringSlice("exclude", nil, "skip files matching these glob patterns")
	f.Bool("continue-on-error", true, "report unreadable files instead of failing the batch")
	f.Bool("progress", false, "show a progress bar on stderr")
	f.Bool("stats", false, "print processing statistics on stderr")
	f.BoolP("quiet", "q", false, "suppress progress and statistics")
	return cmd
}

func intFlag(cmd *cobra.Command, name string, def int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return def
}

func boolFlag(cmd *cobra.Command, name string, def bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return def
}

func sliceFlag(cmd *cobra.Command, name string, def []string) []string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetStringSlice(name)
		return v
	}
	return def
}
