package benchmark

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFixtures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "barcodes")
	scenarios := FilterScenarios(DefaultScenarios(), []string{"upside-down", "blank"})

	entries, err := WriteFixtures(dir, scenarios)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	var manifest []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, entries, manifest)

	sc, err := pipeline.NewBuilder().Build()
	require.NoError(t, err)
	for _, e := range manifest {
		img, _, err := utils.LoadImage(filepath.Join(dir, e.File))
		require.NoError(t, err, e.File)
		res, err := sc.ScanImage(context.Background(), img)
		require.NoError(t, err)
		assert.Equal(t, e.Want, res.Main, e.File)
	}
}
