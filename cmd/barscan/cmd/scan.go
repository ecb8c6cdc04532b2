package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/barscan/internal/batch"
	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/utils"
	"github.com/spf13/cobra"
)

func newScanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>...",
		Short: "Read the barcode of one or more product photos",
		Long: `Scan each image and print the recognized code, its symbology and the
recovery tier that found it. Images without a readable barcode are reported
as "not found"; only unreadable files count as failures.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP, HEIC/HEIF.

Examples:
  barscan scan photo.jpg
  barscan scan --format csv --output results.csv a.jpg b.heic
  barscan scan --debug-dir /tmp/candidates blurry.jpg`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			pCfg := cfg.ToPipelineConfig()

			format := stringFlag(cmd, "format", cfg.Output.Format)
			output := stringFlag(cmd, "output", cfg.Output.File)
			debugDir := stringFlag(cmd, "debug-dir", cfg.Scan.DebugDir)
			if cmd.Flags().Changed("timeout") {
				pCfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			}
			if cmd.Flags().Changed("try-harder") {
				pCfg.TryHarder, _ = cmd.Flags().GetBool("try-harder")
			}

			sc, err := pipeline.NewBuilder().WithConfig(pCfg).WithDebugDir(debugDir).Build()
			if err != nil {
				return fmt.Errorf("failed to build scan pipeline: %w", err)
			}

			items := make([]batch.Item, len(args))
			failed := 0
			for i, path := range args {
				items[i] = scanFile(cmd.Context(), sc, path)
				if items[i].Err != nil {
					failed++
				}
			}

			out, err := batch.FormatItems(items, format)
			if err != nil {
				return err
			}
			if err := batch.WriteOutput(cmd.OutOrStdout(), out, output); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "output format: text, json, csv")
	cmd.Flags().StringP("output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().String("debug-dir", "", "write every candidate image to this directory")
	cmd.Flags().Duration("timeout", 0, "per-image scan deadline (0 = none)")
	cmd.Flags().Bool("try-harder", true, "let the decoder scan more rows per candidate")
	return cmd
}

func scanFile(ctx context.Context, sc *pipeline.Scanner, path string) batch.Item {
	if ctx == nil {
		ctx = context.Background()
	}
	item := batch.Item{Path: path}
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		item.Err = err
		return item
	}

	start := time.Now()
	res, err := sc.ScanImage(ctx, img)
	item.Result, item.Err = res, err
	if err == nil {
		slog.Info("Scan completed", "file", path, "format", meta.Format, "found", res.Found(),
			"tier", res.Tier, "attempts", res.Attempts, "duration", time.Since(start))
	}
	return item
}

// stringFlag returns the flag value when it was set explicitly and def otherwise.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return def
}
