package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	p := pipeline.DefaultConfig()
	return Config{
		LogLevel: "info",
		Scan: ScanConfig{
			Quality:    p.Quality,
			Threshold:  p.Threshold,
			Deskew:     p.Deskew,
			Preprocess: p.Preprocess,
			Angles: AnglesConfig{
				Cardinal: p.CardinalAngles,
				Small:    p.SmallAngles,
				Deep:     p.DeepAngles,
			},
			TryHarder:    p.TryHarder,
			MaxDimension: 2048,
		},
		Output: OutputConfig{Format: "text"},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			MaxBatchSize:    16,
			TrustedProxies:  []string{},
		},
		Batch: BatchConfig{
			Workers:         4,
			Include:         []string{},
			Exclude:         []string{},
			ContinueOnError: true,
		},
	}
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "csv"}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("invalid max batch size: %d (must be positive)", c.Server.MaxBatchSize)
	}
	if c.Server.RequestsPerMinute < 0 || c.Server.MaxDataMBPerDay < 0 {
		return fmt.Errorf("invalid server rate limits: must not be negative")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	if c.Scan.TimeoutMS < 0 {
		return fmt.Errorf("invalid scan timeout: %dms (must not be negative)", c.Scan.TimeoutMS)
	}
	if len(c.Scan.Angles.Cardinal) == 0 {
		return fmt.Errorf("scan.angles.cardinal must not be empty")
	}
	if err := validateRange(c.Scan.Quality.MinEdgeDensity, 0, 1, "scan.quality.min_edge_density"); err != nil {
		return err
	}
	if c.Scan.Quality.CannyLow > c.Scan.Quality.CannyHigh {
		return fmt.Errorf("invalid scan.quality canny bounds: low %.0f > high %.0f",
			c.Scan.Quality.CannyLow, c.Scan.Quality.CannyHigh)
	}
	if c.Scan.Preprocess.ClipLimit <= 0 || c.Scan.Preprocess.TileGrid <= 0 {
		return fmt.Errorf("invalid scan.preprocess: clip limit and tile grid must be positive")
	}

	if err := c.ToPipelineConfig().Validate(); err != nil {
		return fmt.Errorf("invalid scan settings: %w", err)
	}
	return nil
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Quality = c.Scan.Quality
	cfg.Threshold = c.Scan.Threshold
	cfg.Deskew = c.Scan.Deskew
	cfg.Preprocess = c.Scan.Preprocess
	cfg.CardinalAngles = c.Scan.Angles.Cardinal
	cfg.SmallAngles = c.Scan.Angles.Small
	cfg.DeepAngles = c.Scan.Angles.Deep
	cfg.TryHarder = c.Scan.TryHarder
	cfg.Timeout = time.Duration(c.Scan.TimeoutMS) * time.Millisecond
	cfg.MaxDimension = c.Scan.MaxDimension
	if c.Batch.Workers > 0 {
		cfg.Parallel.MaxWorkers = c.Batch.Workers
	}
	return cfg
}

// validateRange validates that a value lies within [lo, hi].
func validateRange(value, lo, hi float64, name string) error {
	if value < lo || value > hi {
		return fmt.Errorf("invalid %s: %.2f (must be between %.1f and %.1f)", name, value, lo, hi)
	}
	return nil
}
