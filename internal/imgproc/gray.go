// Package imgproc holds the grayscale image primitives used by the scan
// pipeline: exact and interpolated rotation, thresholding, blurring,
// resampling, edge detection, line detection and local contrast equalization.
//
// Every function returns a freshly allocated image anchored at (0,0); inputs
// are never modified.
package imgproc

import (
	"errors"
	"image"
	"image/draw"
)

// ErrEmptyImage is returned when an operation receives a nil or zero-area image.
var ErrEmptyImage = errors.New("imgproc: empty image")

// ToGray converts any image to an 8-bit luma image with bounds starting at (0,0)
// and a packed stride.
func ToGray(img image.Image) *image.Gray {
	if img == nil {
		return image.NewGray(image.Rectangle{})
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := range b.Dy() {
			src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Clone returns a packed copy of g.
func Clone(g *image.Gray) *image.Gray { return ToGray(g) }

// IsEmpty reports whether g is nil or has zero area.
func IsEmpty(g *image.Gray) bool { return g == nil || g.Bounds().Empty() }

// packed returns g itself when it is already anchored at the origin with
// stride == width, otherwise a packed copy.
func packed(g *image.Gray) *image.Gray {
	b := g.Bounds()
	if b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	return ToGray(g)
}

// reflect101 maps an out-of-range index into [0,n) by mirroring without
// repeating the border pixel (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
