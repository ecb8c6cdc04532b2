package testutil

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/require"
)

// SampleEAN13 is a valid EAN-13 payload used across the test suites.
const SampleEAN13 = "4006381333931"

// BarcodeSpec describes a synthetic linear symbol.
type BarcodeSpec struct {
	Payload     string
	ModuleWidth int // pixels per module
	BarHeight   int // pixels
	Margin      int // white border around the symbol, pixels
}

// DefaultBarcodeSpec returns a clean, well-sampled EAN-13 layout.
func DefaultBarcodeSpec() BarcodeSpec {
	return BarcodeSpec{Payload: SampleEAN13, ModuleWidth: 4, BarHeight: 200, Margin: 60}
}

// RenderEAN13 draws spec as black bars on a white background.
func RenderEAN13(spec BarcodeSpec) (*image.Gray, error) {
	if spec.ModuleWidth < 1 || spec.BarHeight < 1 || spec.Margin < 0 {
		return nil, fmt.Errorf("invalid barcode spec %+v", spec)
	}
	matrix, err := oned.NewEAN13Writer().Encode(spec.Payload, gozxing.BarcodeFormat_EAN_13, 0, 1, nil)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", spec.Payload, err)
	}

	modules := matrix.GetWidth()
	w := modules*spec.ModuleWidth + 2*spec.Margin
	h := spec.BarHeight + 2*spec.Margin
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for m := range modules {
		if !matrix.Get(m, 0) {
			continue
		}
		x0 := spec.Margin + m*spec.ModuleWidth
		for y := spec.Margin; y < spec.Margin+spec.BarHeight; y++ {
			row := img.Pix[y*img.Stride:]
			for x := x0; x < x0+spec.ModuleWidth; x++ {
				row[x] = 0
			}
		}
	}
	return img, nil
}

// MustRenderEAN13 is RenderEAN13 for tests.
func MustRenderEAN13(t testing.TB, spec BarcodeSpec) *image.Gray {
	t.Helper()
	img, err := RenderEAN13(spec)
	require.NoError(t, err)
	return img
}

// Uniform returns a w x h image filled with v.
func Uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Rotate rotates img counter-clockwise by degrees on a white, expanded canvas.
func Rotate(img image.Image, degrees float64) *image.Gray {
	return toGray(imaging.Rotate(img, degrees, color.White))
}

// Blur applies a Gaussian blur.
func Blur(img image.Image, sigma float64) *image.Gray {
	return toGray(imaging.Blur(img, sigma))
}

// Resize scales img to the given width, keeping the aspect ratio.
func Resize(img image.Image, width int) *image.Gray {
	return toGray(imaging.Resize(img, width, 0, imaging.Linear))
}

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			out.Set(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}
