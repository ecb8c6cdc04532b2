package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "barscan.yaml")
	_, err = os.Stat(filepath.Join(dir, "barscan.yaml"))
	require.NoError(t, err)

	_, _, err = run(t, "config", "init")
	require.Error(t, err, "existing file must not be overwritten")

	out, _, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from")
	assert.Contains(t, out, "max_dimension: 2048")
}

func TestConfigShowAppliesFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := run(t, "--log-level", "warn", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: warn")
	assert.NotContains(t, out, "# loaded from")
}
