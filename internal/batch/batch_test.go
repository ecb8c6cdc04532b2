package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := testutil.MustRenderEAN13(t, testutil.DefaultBarcodeSpec())
	testutil.WritePNG(t, dir, "a_upright.png", img)
	testutil.WritePNG(t, dir, "b_flipped.png", testutil.Rotate(img, 180))
	testutil.WritePNG(t, dir, "c_blank.png", testutil.Uniform(200, 120, 255))
	return dir
}

func TestProcessBatch(t *testing.T) {
	dir := writeFixtures(t)
	cfg := DefaultConfig()
	cfg.Workers = 2

	res, err := ProcessBatch(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	assert.Equal(t, filepath.Join(dir, "a_upright.png"), res.Items[0].Path)
	assert.Equal(t, testutil.SampleEAN13, res.Items[0].Result.Main)
	assert.Equal(t, testutil.SampleEAN13, res.Items[1].Result.Main)
	require.NoError(t, res.Items[2].Err)
	assert.False(t, res.Items[2].Result.Found())

	assert.Equal(t, Stats{Total: 3, Found: 2, NotFound: 1}, res.Stats())
	assert.Equal(t, 2, res.WorkerCount)

	var buf bytes.Buffer
	res.PrintStats(&buf)
	assert.Contains(t, buf.String(), "Found: 2")
}

func TestProcessBatch_Failures(t *testing.T) {
	dir := writeFixtures(t)
	broken := filepath.Join(dir, "d_broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o600))

	cfg := DefaultConfig()
	res, err := ProcessBatch(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats().Failed)
	require.Error(t, res.Items[3].Err)

	cfg.ContinueOnError = false
	res, err = ProcessBatch(context.Background(), []string{dir}, cfg)
	require.Error(t, err)
	require.NotNil(t, res, "results are returned together with the error")
	assert.Len(t, res.Items, 4)
}

func TestProcessBatch_NoFiles(t *testing.T) {
	_, err := ProcessBatch(context.Background(), []string{t.TempDir()}, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image files")
}

func TestProcessBatch_TooSmall(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePNG(t, dir, "tiny.png", testutil.Uniform(4, 4, 0))
	res, err := ProcessBatch(context.Background(), []string{dir}, DefaultConfig())
	require.NoError(t, err)
	require.Error(t, res.Items[0].Err)
}

func TestSaveResults(t *testing.T) {
	res := &Result{Items: sampleItems()}

	var buf bytes.Buffer
	require.NoError(t, res.SaveResults(&buf, "csv", ""))
	assert.Contains(t, buf.String(), "a.jpg,true,036000291452")

	out := filepath.Join(t.TempDir(), "out.json")
	buf.Reset()
	require.NoError(t, res.SaveResults(&buf, "json", out))
	assert.Zero(t, buf.Len())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file": "a.jpg"`)
}
