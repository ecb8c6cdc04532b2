package imgproc

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// RotateCardinal rotates g counter-clockwise by a multiple of 90 degrees.
// The rotation permutes pixels exactly; no interpolation happens.
func RotateCardinal(g *image.Gray, degrees int) (*image.Gray, error) {
	if IsEmpty(g) {
		return nil, ErrEmptyImage
	}
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return Clone(g), nil
	case 90:
		return ToGray(imaging.Rotate90(g)), nil
	case 180:
		return ToGray(imaging.Rotate180(g)), nil
	case 270:
		return ToGray(imaging.Rotate270(g)), nil
	default:
		return nil, fmt.Errorf("imgproc: %d is not a cardinal angle", degrees)
	}
}

// RotateFill rotates g counter-clockwise by an arbitrary angle. The canvas grows
// to hold the whole rotated image and uncovered areas are painted with fill.
func RotateFill(g *image.Gray, degrees float64, fill uint8) (*image.Gray, error) {
	if IsEmpty(g) {
		return nil, ErrEmptyImage
	}
	if degrees == 0 {
		return Clone(g), nil
	}
	out := ToGray(imaging.Rotate(g, degrees, color.Gray{Y: fill}))
	if IsEmpty(out) {
		return nil, ErrEmptyImage
	}
	return out, nil
}

// RotateReplicate rotates g counter-clockwise about its center, keeping the
// original size. Samples that fall outside the source take the value of the
// nearest border pixel, so no artificial edges appear along the frame.
func RotateReplicate(g *image.Gray, degrees float64) (*image.Gray, error) {
	if IsEmpty(g) {
		return nil, ErrEmptyImage
	}
	if degrees == 0 {
		return Clone(g), nil
	}
	src := packed(g)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	margin := int(math.Ceil(math.Hypot(float64(w), float64(h))/2)) + 2
	padded := padReplicate(src, margin)

	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := float64(w)/2, float64(h)/2
	mx, my := float64(margin)+cx, float64(margin)+cy
	s2d := f64.Aff3{
		cos, sin, -cos*mx - sin*my + cx,
		-sin, cos, sin*mx - cos*my + cy,
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Transform(dst, s2d, padded, padded.Bounds(), draw.Src, nil)
	return dst, nil
}

// padReplicate returns g surrounded by m pixels of edge replication.
func padReplicate(g *image.Gray, m int) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w+2*m, h+2*m))
	for y := range h + 2*m {
		sy := clampInt(y-m, 0, h-1)
		srow := g.Pix[sy*g.Stride : sy*g.Stride+w]
		drow := out.Pix[y*out.Stride : y*out.Stride+w+2*m]
		left, right := srow[0], srow[w-1]
		for x := range m {
			drow[x] = left
			drow[m+w+x] = right
		}
		copy(drow[m:m+w], srow)
	}
	return out
}
