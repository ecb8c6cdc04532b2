package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_ColorInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for y := range 32 {
		for x := range 64 {
			img.Set(x, y, color.NRGBA{R: uint8(100 + x%10), G: 110, B: 120, A: 255})
		}
	}
	f, err := Prepare(img, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), f.Original.Bounds())
	assert.Equal(t, f.Original.Bounds(), f.Enhanced.Bounds())
	assert.NotEqual(t, f.Original.Pix, f.Enhanced.Pix)
}

func TestPrepare_Empty(t *testing.T) {
	_, err := Prepare(nil, DefaultConfig())
	require.Error(t, err)
	_, err = Prepare(image.NewGray(image.Rectangle{}), DefaultConfig())
	require.Error(t, err)
}
