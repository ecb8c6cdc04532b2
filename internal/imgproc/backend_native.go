//go:build !cgo || purego

package imgproc

import "image"

// Backend names the implementation of the edge, line, filter and
// equalization kernels.
const Backend = "native"

func canny(src *image.Gray, low, high float64) *image.Gray { return nativeCanny(src, low, high) }

func houghLines(src *image.Gray, rho, theta float64, threshold int) []Line {
	return nativeHoughLines(src, rho, theta, threshold)
}

func clahe(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	return nativeCLAHE(src, clipLimit, tiles)
}

func laplacian(src *image.Gray) []float64 { return nativeLaplacian(src) }

func otsu(src *image.Gray) uint8 { return nativeOtsu(src) }
