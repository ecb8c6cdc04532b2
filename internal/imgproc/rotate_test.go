package imgproc

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			g.Pix[y*g.Stride+x] = uint8((x*7 + y*13) % 256)
		}
	}
	return g
}

func TestRotateCardinal_PermutesPixels(t *testing.T) {
	g := gradient(5, 3)

	r90, err := RotateCardinal(g, 90)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 5), r90.Bounds())
	// Counter-clockwise: the top-right source pixel lands top-left.
	assert.Equal(t, g.GrayAt(4, 0), r90.GrayAt(0, 0))

	r180, err := RotateCardinal(g, 180)
	require.NoError(t, err)
	assert.Equal(t, g.GrayAt(0, 0), r180.GrayAt(4, 2))

	r270, err := RotateCardinal(g, -90)
	require.NoError(t, err)
	assert.Equal(t, g.GrayAt(0, 2), r270.GrayAt(0, 0))

	back, err := RotateCardinal(r90, 270)
	require.NoError(t, err)
	assert.Equal(t, g.Pix, back.Pix)
}

func TestRotateCardinal_Errors(t *testing.T) {
	_, err := RotateCardinal(gradient(4, 4), 45)
	require.Error(t, err)

	_, err = RotateCardinal(nil, 90)
	require.ErrorIs(t, err, ErrEmptyImage)
}

func TestRotateCardinal_DoesNotMutateInput(t *testing.T) {
	g := gradient(6, 4)
	before := append([]uint8(nil), g.Pix...)
	_, err := RotateCardinal(g, 90)
	require.NoError(t, err)
	assert.Equal(t, before, g.Pix)
}

func TestRotateFill_ExpandsCanvasWithFill(t *testing.T) {
	g := testutil.Uniform(100, 40, 0)
	out, err := RotateFill(g, 5, 255)
	require.NoError(t, err)
	assert.Greater(t, out.Bounds().Dx(), 100)
	assert.Greater(t, out.Bounds().Dy(), 40)
	// Corners lie outside the rotated rectangle.
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
}

func TestRotateReplicate_KeepsSizeAndBorders(t *testing.T) {
	g := testutil.Uniform(120, 80, 200)
	out, err := RotateReplicate(g, 7)
	require.NoError(t, err)
	assert.Equal(t, g.Bounds(), out.Bounds())
	for _, v := range out.Pix {
		assert.InDelta(t, 200, int(v), 1)
	}
}

func TestRotateReplicate_RoundTrip(t *testing.T) {
	spec := testutil.DefaultBarcodeSpec()
	g := testutil.MustRenderEAN13(t, spec)

	fwd, err := RotateReplicate(g, 4)
	require.NoError(t, err)
	back, err := RotateReplicate(fwd, -4)
	require.NoError(t, err)

	// Interior of the bars survives a rotate/unrotate cycle.
	b := g.Bounds()
	mismatch := 0
	total := 0
	for y := b.Dy()/2 - 20; y < b.Dy()/2+20; y++ {
		for x := b.Dx() / 4; x < 3*b.Dx()/4; x++ {
			total++
			if absDiff(g.GrayAt(x, y).Y, back.GrayAt(x, y).Y) > 128 {
				mismatch++
			}
		}
	}
	assert.Less(t, float64(mismatch)/float64(total), 0.05)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
