package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestLoader() *Loader { return NewLoaderWithViper(viper.New()) }

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	require.NotNil(t, l)
	assert.Same(t, viper.GetViper(), l.GetViper())
}

func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barscan.yaml")
	content := `
log_level: debug
scan:
  try_harder: false
  timeout_ms: 2500
  threshold:
    levels: [120, 150, 170]
  angles:
    small: [-4, 4]
output:
  format: json
server:
  port: 9090
  trusted_proxies: ["10.0.0.1", "172.16.0.0/12"]
batch:
  workers: 2
  recursive: true
  include: ["*.jpg"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	l := newTestLoader()
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.GetConfigFileUsed())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Scan.TryHarder)
	assert.Equal(t, 2500, cfg.Scan.TimeoutMS)
	assert.Equal(t, []int{120, 150, 170}, cfg.Scan.Threshold.Levels)
	assert.Equal(t, []float64{-4, 4}, cfg.Scan.Angles.Small)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.True(t, cfg.Batch.Recursive)
	assert.Equal(t, []string{"*.jpg"}, cfg.Batch.Include)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultConfig().Scan.Deskew, cfg.Scan.Deskew)
	assert.Equal(t, DefaultConfig().Scan.Threshold.DeepLevels, cfg.Scan.Threshold.DeepLevels)
}

func TestLoadWithMissingFile(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	cfg, err := newTestLoader().LoadWithFileWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.LogLevel)
}

func TestLoadWithBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unclosed\n"), 0o600))
	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BARSCAN_LOG_LEVEL", "warn")
	t.Setenv("BARSCAN_SERVER_PORT", "7000")
	t.Setenv("BARSCAN_SCAN_TIMEOUT_MS", "900")
	t.Setenv("BARSCAN_SCAN_QUALITY_MIN_CONTRAST", "35.5")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 900, cfg.Scan.TimeoutMS)
	assert.InDelta(t, 35.5, cfg.Scan.Quality.MinContrast, 1e-9)
}

func TestLoaderSetOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	l := newTestLoader()
	l.Set("output.format", "csv")
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "csv", l.Get("output.format"))
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	written, err := GenerateDefaultConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, DefaultConfig(), decoded)

	// the generated file loads back through viper unchanged
	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	_, err = GenerateDefaultConfigFile(path)
	require.Error(t, err, "existing files are kept")
}

func TestWriteYAML(t *testing.T) {
	cfg := DefaultConfig()
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, &cfg))
	assert.Contains(t, buf.String(), "log_level: info")
	assert.Contains(t, buf.String(), "min_sharpness: 50")
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, filepath.Join("/xdg", "barscan"))
	assert.Equal(t, "/etc/barscan", paths[len(paths)-1])
}
