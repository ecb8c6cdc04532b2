package batch

import (
	"time"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
)

// Config holds all configuration for batch processing.
type Config struct {
	Pipeline pipeline.Config
	DebugDir string

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration

	// Output settings
	Format     string
	OutputFile string
}

// DefaultConfig returns batch defaults on top of the default pipeline.
func DefaultConfig() *Config {
	return &Config{
		Pipeline:         pipeline.DefaultConfig(),
		Workers:          4,
		ContinueOnError:  true,
		ProgressInterval: 100 * time.Millisecond,
		Format:           "text",
	}
}
