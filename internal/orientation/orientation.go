// Package orientation enumerates the rotations the scan pipeline tries.
//
// Cardinal rotations permute pixels exactly. Small-angle rotations
// interpolate and pad the expanded canvas with a fill value so that the
// corners do not introduce dark edges. Angles are counter-clockwise degrees.
// Both enumerators are lazy: a rotation is only computed when the consumer
// asks for the next one.
package orientation

import (
	"fmt"
	"image"
	"iter"
	"strconv"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
)

var (
	// CardinalAngles is the order in which the fast tiers try right-angle rotations.
	CardinalAngles = []int{0, 90, 180, 270}
	// SmallAngles is the order in which small skews are compensated.
	SmallAngles = []float64{-5, -3, 3, 5}
	// DeepAngles is the rotation subset the deep tier explores.
	DeepAngles = []int{0, 90}
)

// White is the fill used for canvas areas uncovered by a small-angle rotation.
const White uint8 = 255

// Rotation is one enumerated orientation of an image.
type Rotation struct {
	Degrees float64
	Image   *image.Gray
}

// Name is a short label for logs and debug dumps.
func (r Rotation) Name() string {
	return "rot" + strconv.FormatFloat(r.Degrees, 'f', -1, 64)
}

// Cardinal yields g rotated by each of the given right angles, in order.
// A failed rotation is yielded as an error and enumeration continues.
func Cardinal(g *image.Gray, angles []int) iter.Seq2[Rotation, error] {
	return func(yield func(Rotation, error) bool) {
		for _, a := range angles {
			img, err := imgproc.RotateCardinal(g, a)
			if err != nil {
				err = fmt.Errorf("rotate %d: %w", a, err)
			}
			if !yield(Rotation{Degrees: float64(a), Image: img}, err) {
				return
			}
		}
	}
}

// SmallAngle yields g rotated by each of the given angles, padding with fill.
func SmallAngle(g *image.Gray, angles []float64, fill uint8) iter.Seq2[Rotation, error] {
	return func(yield func(Rotation, error) bool) {
		for _, a := range angles {
			img, err := imgproc.RotateFill(g, a, fill)
			if err != nil {
				err = fmt.Errorf("rotate %g: %w", a, err)
			}
			if !yield(Rotation{Degrees: a, Image: img}, err) {
				return
			}
		}
	}
}
