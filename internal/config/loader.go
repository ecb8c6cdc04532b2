package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "barscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "BARSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance, so that flags bound
// by the root command take part in resolution.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on an isolated viper instance.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from files, environment variables and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.LoadWithFile("")
}

// LoadWithoutValidation is Load without the final Validate call.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.LoadWithFileWithoutValidation("")
}

// LoadWithFile loads configuration from a specific file path. An empty path
// searches the standard locations instead.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	cfg, err := l.LoadWithFileWithoutValidation(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithFileWithoutValidation loads configuration from a specific file path without validation.
func (l *Loader) LoadWithFileWithoutValidation(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine when searching; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so that environment variables resolve
// even when no config file mentions them.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("scan.quality.min_sharpness", d.Scan.Quality.MinSharpness)
	l.v.SetDefault("scan.quality.min_contrast", d.Scan.Quality.MinContrast)
	l.v.SetDefault("scan.quality.min_edge_density", d.Scan.Quality.MinEdgeDensity)
	l.v.SetDefault("scan.quality.canny_low", d.Scan.Quality.CannyLow)
	l.v.SetDefault("scan.quality.canny_high", d.Scan.Quality.CannyHigh)

	l.v.SetDefault("scan.threshold.levels", d.Scan.Threshold.Levels)
	l.v.SetDefault("scan.threshold.deep_levels", d.Scan.Threshold.DeepLevels)
	l.v.SetDefault("scan.threshold.upscale_below", d.Scan.Threshold.UpscaleBelow)
	l.v.SetDefault("scan.threshold.upscale_factor", d.Scan.Threshold.UpscaleFactor)
	l.v.SetDefault("scan.threshold.smooth_sigma", d.Scan.Threshold.SmoothSigma)

	l.v.SetDefault("scan.deskew.scale", d.Scan.Deskew.Scale)
	l.v.SetDefault("scan.deskew.canny_low", d.Scan.Deskew.CannyLow)
	l.v.SetDefault("scan.deskew.canny_high", d.Scan.Deskew.CannyHigh)
	l.v.SetDefault("scan.deskew.hough_threshold", d.Scan.Deskew.HoughThreshold)
	l.v.SetDefault("scan.deskew.max_angle", d.Scan.Deskew.MaxAngle)
	l.v.SetDefault("scan.deskew.min_angle", d.Scan.Deskew.MinAngle)
	l.v.SetDefault("scan.deskew.min_lines", d.Scan.Deskew.MinLines)

	l.v.SetDefault("scan.preprocess.clip_limit", d.Scan.Preprocess.ClipLimit)
	l.v.SetDefault("scan.preprocess.tile_grid", d.Scan.Preprocess.TileGrid)

	l.v.SetDefault("scan.angles.cardinal", d.Scan.Angles.Cardinal)
	l.v.SetDefault("scan.angles.small", d.Scan.Angles.Small)
	l.v.SetDefault("scan.angles.deep", d.Scan.Angles.Deep)

	l.v.SetDefault("scan.try_harder", d.Scan.TryHarder)
	l.v.SetDefault("scan.timeout_ms", d.Scan.TimeoutMS)
	l.v.SetDefault("scan.max_dimension", d.Scan.MaxDimension)
	l.v.SetDefault("scan.debug_dir", d.Scan.DebugDir)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.file", d.Output.File)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	l.v.SetDefault("server.max_batch_size", d.Server.MaxBatchSize)
	l.v.SetDefault("server.requests_per_minute", d.Server.RequestsPerMinute)
	l.v.SetDefault("server.max_data_mb_per_day", d.Server.MaxDataMBPerDay)
	l.v.SetDefault("server.trusted_proxies", d.Server.TrustedProxies)

	l.v.SetDefault("batch.workers", d.Batch.Workers)
	l.v.SetDefault("batch.recursive", d.Batch.Recursive)
	l.v.SetDefault("batch.include", d.Batch.Include)
	l.v.SetDefault("batch.exclude", d.Batch.Exclude)
	l.v.SetDefault("batch.continue_on_error", d.Batch.ContinueOnError)
	l.v.SetDefault("batch.progress", d.Batch.Progress)
}

// WriteYAML encodes cfg as YAML.
func WriteYAML(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// GenerateDefaultConfigFile writes the default configuration to filename,
// or barscan.yaml when filename is empty. Existing files are not overwritten.
func GenerateDefaultConfigFile(filename string) (string, error) {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // G304: user-chosen output path
	if err != nil {
		return "", fmt.Errorf("create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := WriteYAML(f, &cfg); err != nil {
		return "", err
	}
	return filename, nil
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	return append(paths, "/etc/"+ConfigFileName)
}
