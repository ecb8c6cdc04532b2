package batch

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []Item {
	return []Item{
		{Path: "a.jpg", Result: &pipeline.ScanResult{
			Main: "036000291452", Extension: "52495", Symbology: barcode.FormatUPCA,
			Tier: pipeline.TierDeep, Transform: "rot0/deskew+7.0", Attempts: 23,
		}},
		{Path: "b.jpg", Result: &pipeline.ScanResult{Attempts: 10, Gated: true}},
		{Path: "c.jpg", Err: errors.New("failed to load c.jpg")},
	}
}

func TestFormatItems_JSON(t *testing.T) {
	out, err := FormatItems(sampleItems(), "json")
	require.NoError(t, err)

	var decoded struct {
		Images []map[string]any `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Images, 3)

	a := decoded.Images[0]
	assert.Equal(t, "a.jpg", a["file"])
	assert.Equal(t, true, a["found"])
	assert.Equal(t, "036000291452", a["main"])
	assert.Equal(t, "52495", a["extension"])
	assert.Equal(t, "upc_a", a["symbology"])
	assert.Equal(t, "deep", a["tier"])

	b := decoded.Images[1]
	assert.Nil(t, b["main"])
	assert.Nil(t, b["extension"])
	assert.Equal(t, true, b["gated"])

	assert.Equal(t, "failed to load c.jpg", decoded.Images[2]["error"])
}

func TestFormatItems_CSV(t *testing.T) {
	out, err := FormatItems(sampleItems(), "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "file", rows[0][0])
	assert.Equal(t, []string{"a.jpg", "true", "036000291452", "52495", "upc_a", "deep", "rot0/deskew+7.0", "23", ""}, rows[1])
	assert.Equal(t, []string{"b.jpg", "false", "", "", "", "", "", "10", ""}, rows[2])
	assert.Equal(t, "failed to load c.jpg", rows[3][8])
}

func TestFormatItems_Text(t *testing.T) {
	out, err := FormatItems(sampleItems(), "text")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a.jpg: 036000291452 52495 [upc_a, tier deep, rot0/deskew+7.0, 23 attempts]", lines[0])
	assert.Contains(t, lines[1], "not found (image quality too low")
	assert.Contains(t, lines[2], "error: failed to load c.jpg")

	plain, err := FormatItems([]Item{{Path: "d.jpg", Result: &pipeline.ScanResult{}}}, "")
	require.NoError(t, err)
	assert.Equal(t, "d.jpg: not found\n", plain)
}

func TestFormatItems_Unknown(t *testing.T) {
	_, err := FormatItems(nil, "xml")
	require.Error(t, err)
}
