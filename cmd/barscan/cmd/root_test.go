package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/MeKo-Tech/barscan/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes a fresh command tree in a clean working directory.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func fixtures(t *testing.T) (dir, upright, rotated, blank string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	img := testutil.MustRenderEAN13(t, testutil.DefaultBarcodeSpec())
	upright = testutil.WritePNG(t, dir, "upright.png", img)
	rotated = testutil.WritePNG(t, dir, "rotated.png", testutil.Rotate(img, 180))
	blank = testutil.WritePNG(t, dir, "blank.png", testutil.Uniform(200, 120, 255))
	return dir, upright, rotated, blank
}

func TestVersionFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestRootHelp(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t)
	require.NoError(t, err)
	for _, sub := range []string{"scan", "batch", "serve", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestBrokenConfigFileFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unclosed"), 0o600))

	_, _, err := run(t, "--config", path, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestLoggingGoesToStderrAsJSON(t *testing.T) {
	_, upright, _, _ := fixtures(t)

	out, errOut, err := run(t, "--log-level", "debug", "scan", upright)
	require.NoError(t, err)
	assert.Contains(t, out, testutil.SampleEAN13)
	assert.NotContains(t, out, `"level"`)

	line, _, _ := strings.Cut(strings.TrimSpace(errOut), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Contains(t, entry, "level")
}

func TestConfigFileSetsOutputFormat(t *testing.T) {
	dir, upright, _, _ := fixtures(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "barscan.yaml"), []byte("output:\n  format: csv\n"), 0o600))

	out, _, err := run(t, "scan", upright)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "file,"), "csv header expected, got %q", out)
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	_, upright, _, _ := fixtures(t)
	t.Setenv("BARSCAN_OUTPUT_FORMAT", "json")

	out, _, err := run(t, "scan", upright)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), "json output expected, got %q", out)
}
