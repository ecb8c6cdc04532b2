package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEAN13_Layout(t *testing.T) {
	spec := DefaultBarcodeSpec()
	img := MustRenderEAN13(t, spec)

	b := img.Bounds()
	assert.Equal(t, spec.BarHeight+2*spec.Margin, b.Dy())
	assert.Zero(t, (b.Dx()-2*spec.Margin)%spec.ModuleWidth)

	// Margins stay white.
	assert.Equal(t, uint8(255), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(b.Dx()-1, b.Dy()-1).Y)

	// Every bar column is uniform across the bar height.
	mid := spec.Margin + spec.BarHeight/2
	for x := range b.Dx() {
		assert.Equal(t, img.GrayAt(x, spec.Margin).Y, img.GrayAt(x, mid).Y)
	}
}

func TestRenderEAN13_RejectsBadPayload(t *testing.T) {
	spec := DefaultBarcodeSpec()
	spec.Payload = "4006381333932"
	_, err := RenderEAN13(spec)
	require.Error(t, err)
}

func TestUniformAndRotate(t *testing.T) {
	img := Uniform(40, 20, 255)
	rot := Rotate(img, 90)
	assert.Equal(t, 20, rot.Bounds().Dx())
	assert.Equal(t, 40, rot.Bounds().Dy())
	assert.Equal(t, uint8(255), rot.GrayAt(5, 5).Y)
}

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(root+"/go.mod"))
}
