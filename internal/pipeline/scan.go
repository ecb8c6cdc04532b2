package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/MeKo-Tech/barscan/internal/imgproc"
	"github.com/MeKo-Tech/barscan/internal/preprocess"
	"github.com/MeKo-Tech/barscan/internal/quality"
	"github.com/MeKo-Tech/barscan/internal/utils"
)

// ScanImage converts a decoded photo into the original and enhanced frames
// and scans them.
func (s *Scanner) ScanImage(ctx context.Context, img image.Image) (*ScanResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrInvalidInput
	}
	img = utils.LimitSize(img, s.cfg.MaxDimension)
	f, err := preprocess.Prepare(img, s.cfg.Preprocess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.Scan(ctx, f.Original, f.Enhanced)
}

// Scan runs the tiers in order and returns at the first recognized main
// symbol. A scan that finds nothing returns an empty result and a nil error.
// When ctx is cancelled or the configured timeout expires the partial result
// is returned together with the context error.
func (s *Scanner) Scan(ctx context.Context, original, enhanced *image.Gray) (*ScanResult, error) {
	if imgproc.IsEmpty(original) || imgproc.IsEmpty(enhanced) {
		return nil, ErrInvalidInput
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res := &ScanResult{}
	var agg aggregator
	in := frames{original: original, enhanced: enhanced}
	opts := barcode.Options{Formats: barcode.RetailFormats, TryHarder: s.cfg.TryHarder}

	for _, plan := range s.plans {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if plan.gated {
			if res.Quality == nil {
				q := quality.AssessWith(original, s.cfg.Quality)
				res.Quality = &q
				slog.Debug("Quality assessed",
					"sharpness", q.Sharpness, "contrast", q.Contrast,
					"edge_density", q.EdgeDensity, "scannable", q.Scannable)
			}
			if !res.Quality.Scannable {
				res.Gated = true
				slog.Debug("Quality gate closed", "attempts", res.Attempts, "duration", time.Since(start))
				return res, nil
			}
		}

		slog.Debug("Entering tier", "tier", plan.tier)
		for c, err := range plan.generate(in) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			if err != nil {
				slog.Debug("Skipping candidate", "tier", c.Tier, "transform", c.Transform, "error", err)
				continue
			}
			s.sink.Save(c)
			res.Attempts++

			hits, err := s.decoder.Decode(ctx, c.Image, opts)
			if err != nil {
				slog.Debug("Decode failed", "tier", c.Tier, "transform", c.Transform, "error", err)
				continue
			}
			if agg.add(hits) {
				agg.fill(res, c)
				slog.Debug("Symbol recognized",
					"tier", c.Tier, "transform", c.Transform, "symbology", res.Symbology,
					"attempts", res.Attempts, "duration", time.Since(start))
				return res, nil
			}
		}
	}

	if agg.extension != "" {
		slog.Debug("Discarding add-on without main symbol", "extension", agg.extension)
	}
	slog.Debug("No symbol recognized", "attempts", res.Attempts, "duration", time.Since(start))
	return res, nil
}
