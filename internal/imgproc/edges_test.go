package imgproc

import (
	"image"
	"math"
	"testing"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanny_FlatImageHasNoEdges(t *testing.T) {
	assert.Zero(t, CountNonZero(Canny(testutil.Uniform(40, 40, 128), 50, 150)))
}

func TestCanny_VerticalStep(t *testing.T) {
	g := testutil.Uniform(40, 30, 0)
	for y := range 30 {
		for x := 20; x < 40; x++ {
			g.Pix[y*g.Stride+x] = 255
		}
	}
	edges := nativeCanny(g, 50, 150)

	// A single thin edge column next to the step.
	for y := 2; y < 28; y++ {
		n := 0
		for x := range 40 {
			if edges.GrayAt(x, y).Y != 0 {
				n++
				assert.InDelta(t, 19.5, float64(x), 1)
			}
		}
		assert.Equal(t, 1, n, "row %d", y)
	}
}

func TestCanny_EmptyInput(t *testing.T) {
	assert.True(t, IsEmpty(Canny(nil, 50, 150)))
}

func TestHoughLines_FindsVerticalLine(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 60, 120))
	for y := range 120 {
		g.Pix[y*g.Stride+25] = 255
	}
	lines := nativeHoughLines(g, 1, math.Pi/180, 80)
	require.NotEmpty(t, lines)
	best := lines[0]
	assert.InDelta(t, 0, best.ThetaDegrees(), 0.01)
	assert.InDelta(t, 25, best.Rho, 0.01)
	assert.Equal(t, 120, best.Votes)
}

func TestHoughLines_FindsSkewedLine(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 200, 200))
	// A line whose top leans left: normal angle 180 - 10 degrees.
	tan := math.Tan(10 * math.Pi / 180)
	for y := range 200 {
		x := int(math.Round(60 + float64(y)*tan))
		g.Pix[y*g.Stride+x] = 255
	}
	lines := nativeHoughLines(g, 1, math.Pi/180, 80)
	require.NotEmpty(t, lines)
	assert.InDelta(t, 170, lines[0].ThetaDegrees(), 1.01)
}

func TestHoughLines_BelowThreshold(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 60, 50))
	for y := range 50 {
		g.Pix[y*g.Stride+10] = 255
	}
	assert.Empty(t, HoughLines(g, 1, math.Pi/180, 80))
}

func TestCLAHE_StretchesLowContrast(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			g.Pix[y*g.Stride+x] = uint8(100 + (x+y)%21)
		}
	}
	out := nativeCLAHE(g, 2.0, 8)
	assert.Equal(t, g.Bounds(), out.Bounds())

	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	assert.Greater(t, int(hi)-int(lo), 40)
}

func TestCLAHE_SmallImage(t *testing.T) {
	out := CLAHE(testutil.Uniform(5, 3, 50), 2.0, 8)
	assert.Equal(t, image.Rect(0, 0, 5, 3), out.Bounds())
}
