package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur while loading or
// preparing an image before it reaches the scanner.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ImageConstraints bounds the images accepted by the scanner.
type ImageConstraints struct {
	MinWidth  int
	MinHeight int
	// MaxDimension limits the longer side; larger images are scaled down. 0 disables.
	MaxDimension int
}

// DefaultImageConstraints returns the default constraints.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{MinWidth: 16, MinHeight: 16}
}

// ValidateImageConstraints checks dimensions against the provided constraints.
func ValidateImageConstraints(img image.Image, constraints ImageConstraints) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < constraints.MinWidth || h < constraints.MinHeight {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf("image too small: %dx%d < %dx%d",
				w, h, constraints.MinWidth, constraints.MinHeight),
		}
	}
	return nil
}

// LimitSize scales img down so that its longer side is at most maxDimension,
// preserving the aspect ratio. Smaller images and maxDimension <= 0 pass through.
func LimitSize(img image.Image, maxDimension int) image.Image {
	if img == nil || maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}
