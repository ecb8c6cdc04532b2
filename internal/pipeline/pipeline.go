package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/MeKo-Tech/barscan/internal/deskew"
	"github.com/MeKo-Tech/barscan/internal/orientation"
	"github.com/MeKo-Tech/barscan/internal/preprocess"
	"github.com/MeKo-Tech/barscan/internal/quality"
	"github.com/MeKo-Tech/barscan/internal/threshold"
)

// Config holds the tunables of the scan pipeline.
type Config struct {
	Quality    quality.Thresholds
	Threshold  threshold.Config
	Deskew     deskew.Config
	Preprocess preprocess.Config

	CardinalAngles []int
	SmallAngles    []float64
	DeepAngles     []int

	TryHarder    bool          // exhaustive row scanning in the decoder
	Timeout      time.Duration // per-scan deadline, 0 = none
	MaxDimension int           // downscale larger photos before scanning, 0 = off

	Parallel ParallelConfig
}

// DefaultConfig returns the production pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Quality:        quality.DefaultThresholds(),
		Threshold:      threshold.DefaultConfig(),
		Deskew:         deskew.DefaultConfig(),
		Preprocess:     preprocess.DefaultConfig(),
		CardinalAngles: append([]int(nil), orientation.CardinalAngles...),
		SmallAngles:    append([]float64(nil), orientation.SmallAngles...),
		DeepAngles:     append([]int(nil), orientation.DeepAngles...),
		TryHarder:      true,
		Parallel:       DefaultParallelConfig(),
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if err := c.Threshold.Validate(); err != nil {
		return err
	}
	if err := c.Deskew.Validate(); err != nil {
		return err
	}
	for _, a := range append(append([]int(nil), c.CardinalAngles...), c.DeepAngles...) {
		if a%90 != 0 {
			return fmt.Errorf("rotation %d is not a multiple of 90", a)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be >= 0")
	}
	if c.MaxDimension < 0 {
		return errors.New("max dimension must be >= 0")
	}
	return nil
}

// Builder assembles a Scanner.
type Builder struct {
	cfg     Config
	decoder barcode.Backend
	sink    DebugSink
}

// NewBuilder starts from DefaultConfig.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithDecoder sets the symbol decoder. The gozxing backend is used when unset.
func (b *Builder) WithDecoder(d barcode.Backend) *Builder {
	b.decoder = d
	return b
}

// WithDebugSink receives every candidate image before it is decoded.
func (b *Builder) WithDebugSink(s DebugSink) *Builder {
	b.sink = s
	return b
}

// WithDebugDir writes candidate images as PNG files below dir.
func (b *Builder) WithDebugDir(dir string) *Builder {
	if dir != "" {
		b.sink = NewDirSink(dir)
	}
	return b
}

func (b *Builder) WithTimeout(d time.Duration) *Builder {
	if d >= 0 {
		b.cfg.Timeout = d
	}
	return b
}

func (b *Builder) WithTryHarder(enabled bool) *Builder {
	b.cfg.TryHarder = enabled
	return b
}

func (b *Builder) WithMaxDimension(n int) *Builder {
	if n >= 0 {
		b.cfg.MaxDimension = n
	}
	return b
}

func (b *Builder) WithQualityThresholds(th quality.Thresholds) *Builder {
	b.cfg.Quality = th
	return b
}

func (b *Builder) WithParallelWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Parallel.MaxWorkers = workers
	}
	return b
}

func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = callback
	return b
}

// Config returns the configuration assembled so far.
func (b *Builder) Config() Config { return b.cfg }

// Build validates the configuration and returns a Scanner.
func (b *Builder) Build() (*Scanner, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	dec := b.decoder
	if dec == nil {
		var err error
		if dec, err = barcode.NewBackend(); err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
	}
	sink := b.sink
	if sink == nil {
		sink = nopSink{}
	}
	s := &Scanner{
		cfg:      b.cfg,
		decoder:  dec,
		sink:     sink,
		strategy: threshold.New(b.cfg.Threshold),
		deskew:   deskew.New(b.cfg.Deskew),
	}
	s.plans = s.tierPlans()
	return s, nil
}

// Scanner runs the tiered recovery pipeline. It is immutable after Build and
// safe for concurrent use.
type Scanner struct {
	cfg      Config
	decoder  barcode.Backend
	sink     DebugSink
	strategy threshold.Strategy
	deskew   *deskew.Estimator
	plans    []tierPlan
}

// Config returns the scanner configuration.
func (s *Scanner) Config() Config { return s.cfg }
