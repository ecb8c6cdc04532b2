package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanText(t *testing.T) {
	_, upright, rotated, blank := fixtures(t)

	out, _, err := run(t, "scan", upright, rotated, blank)
	require.NoError(t, err)
	assert.Contains(t, out, "upright.png: "+testutil.SampleEAN13)
	assert.Contains(t, out, "rotated.png: "+testutil.SampleEAN13)
	assert.Contains(t, out, "blank.png: not found")
}

func TestScanJSON(t *testing.T) {
	_, _, rotated, _ := fixtures(t)

	out, _, err := run(t, "scan", "--format", "json", rotated)
	require.NoError(t, err)

	var doc struct {
		Images []map[string]any `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Images, 1)
	assert.Equal(t, testutil.SampleEAN13, doc.Images[0]["main"])
	assert.Equal(t, "fast", doc.Images[0]["tier"])
}

func TestScanOutputFile(t *testing.T) {
	dir, upright, _, _ := fixtures(t)
	target := filepath.Join(dir, "out.csv")

	out, _, err := run(t, "scan", "-f", "csv", "-o", target, upright)
	require.NoError(t, err)
	assert.NotContains(t, out, testutil.SampleEAN13)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), testutil.SampleEAN13)
}

func TestScanMissingFileFails(t *testing.T) {
	_, upright, _, _ := fixtures(t)

	out, _, err := run(t, "scan", upright, "missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 images failed")
	assert.Contains(t, out, testutil.SampleEAN13)
}

func TestScanUnknownFormat(t *testing.T) {
	_, upright, _, _ := fixtures(t)

	_, _, err := run(t, "scan", "--format", "xml", upright)
	require.Error(t, err)
}

func TestScanDebugDir(t *testing.T) {
	dir, _, _, blank := fixtures(t)
	debugDir := filepath.Join(dir, "debug")

	_, _, err := run(t, "scan", "--debug-dir", debugDir, blank)
	require.NoError(t, err)

	entries, err := os.ReadDir(debugDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestScanRequiresArgs(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := run(t, "scan")
	require.Error(t, err)
}
