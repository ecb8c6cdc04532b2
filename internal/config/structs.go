//nolint:lll
package config

import (
	"github.com/MeKo-Tech/barscan/internal/deskew"
	"github.com/MeKo-Tech/barscan/internal/preprocess"
	"github.com/MeKo-Tech/barscan/internal/quality"
	"github.com/MeKo-Tech/barscan/internal/threshold"
)

// Config represents the complete configuration for the barscan application.
// It includes settings for all commands (scan, batch, serve) and supports
// loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Scan pipeline configuration
	Scan ScanConfig `mapstructure:"scan" yaml:"scan" json:"scan"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ScanConfig contains the recovery pipeline settings.
type ScanConfig struct {
	Quality    quality.Thresholds `mapstructure:"quality" yaml:"quality" json:"quality"`
	Threshold  threshold.Config   `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	Deskew     deskew.Config      `mapstructure:"deskew" yaml:"deskew" json:"deskew"`
	Preprocess preprocess.Config  `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Angles     AnglesConfig       `mapstructure:"angles" yaml:"angles" json:"angles"`

	TryHarder    bool   `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	TimeoutMS    int    `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	MaxDimension int    `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
	DebugDir     string `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
}

// AnglesConfig lists the rotations tried by the orientation tiers.
type AnglesConfig struct {
	Cardinal []int     `mapstructure:"cardinal" yaml:"cardinal" json:"cardinal"`
	Small    []float64 `mapstructure:"small" yaml:"small" json:"small"`
	Deep     []int     `mapstructure:"deep" yaml:"deep" json:"deep"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBatchSize    int    `mapstructure:"max_batch_size" yaml:"max_batch_size" json:"max_batch_size"`

	// Per-client limits, 0 disables them.
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxDataMBPerDay   int `mapstructure:"max_data_mb_per_day" yaml:"max_data_mb_per_day" json:"max_data_mb_per_day"`

	// TrustedProxies are the proxy IPs or CIDR ranges whose X-Forwarded-For is honoured.
	TrustedProxies []string `mapstructure:"trusted_proxies" yaml:"trusted_proxies" json:"trusted_proxies"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Progress        bool     `mapstructure:"progress" yaml:"progress" json:"progress"`
}
