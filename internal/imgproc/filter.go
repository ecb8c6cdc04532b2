package imgproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// horizontalKernel averages five neighbours along a row.
var horizontalKernel = [25]float64{
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
	1, 1, 1, 1, 1,
	0, 0, 0, 0, 0,
	0, 0, 0, 0, 0,
}

// GaussianBlur smooths g with a Gaussian of the given sigma.
func GaussianBlur(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		return Clone(g)
	}
	return ToGray(imaging.Blur(g, sigma))
}

// HorizontalBlur applies a 1x5 box filter along rows.
func HorizontalBlur(g *image.Gray) *image.Gray {
	return ToGray(imaging.Convolve5x5(g, horizontalKernel, &imaging.ConvolveOptions{Normalize: true}))
}

// Scale resamples g by factor using linear interpolation.
func Scale(g *image.Gray, factor float64) (*image.Gray, error) {
	if IsEmpty(g) || factor <= 0 {
		return nil, ErrEmptyImage
	}
	b := g.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 || h < 1 {
		return nil, ErrEmptyImage
	}
	if w == b.Dx() && h == b.Dy() {
		return Clone(g), nil
	}
	return ToGray(imaging.Resize(g, w, h, imaging.Linear)), nil
}

// Laplacian returns the signed response of the 4-neighbour Laplacian kernel
// for every pixel, in row-major order. Borders are mirrored.
func Laplacian(g *image.Gray) []float64 {
	if IsEmpty(g) {
		return []float64{}
	}
	return laplacian(packed(g))
}

func nativeLaplacian(src *image.Gray) []float64 {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := make([]float64, w*h)
	at := func(x, y int) float64 {
		return float64(src.Pix[reflect101(y, h)*src.Stride+reflect101(x, w)])
	}
	for y := range h {
		for x := range w {
			out[y*w+x] = at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
		}
	}
	return out
}

// Intensities returns g's pixel values as float64 in row-major order.
func Intensities(g *image.Gray) []float64 {
	src := packed(g)
	out := make([]float64, len(src.Pix))
	for i, v := range src.Pix {
		out[i] = float64(v)
	}
	return out
}
