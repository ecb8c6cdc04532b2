//go:build cgo && !purego

package imgproc

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"
)

// Backend names the implementation of the edge, line, filter and
// equalization kernels.
const Backend = "opencv"

func toMat(g *image.Gray) (gocv.Mat, error) {
	b := g.Bounds()
	return gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, g.Pix)
}

func fromMat(m gocv.Mat) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(out.Pix, m.ToBytes())
	return out
}

// fallback logs an OpenCV failure; the caller then runs the native kernel.
func fallback(op string, err error) {
	slog.Debug("OpenCV kernel failed, using native", "op", op, "error", err)
}

func canny(src *image.Gray, low, high float64) *image.Gray {
	in, err := toMat(src)
	if err != nil {
		fallback("canny", err)
		return nativeCanny(src, low, high)
	}
	defer in.Close()
	edges := gocv.NewMat()
	defer edges.Close()
	if err := gocv.Canny(in, &edges, float32(low), float32(high)); err != nil {
		fallback("canny", err)
		return nativeCanny(src, low, high)
	}
	return fromMat(edges)
}

func houghLines(src *image.Gray, rho, theta float64, threshold int) []Line {
	in, err := toMat(src)
	if err != nil {
		fallback("hough", err)
		return nativeHoughLines(src, rho, theta, threshold)
	}
	defer in.Close()
	lines := gocv.NewMat()
	defer lines.Close()
	if err := gocv.HoughLines(in, &lines, float32(rho), float32(theta), threshold); err != nil {
		fallback("hough", err)
		return nativeHoughLines(src, rho, theta, threshold)
	}

	out := make([]Line, 0, lines.Rows())
	for i := range lines.Rows() {
		v := lines.GetVecfAt(i, 0)
		if len(v) < 2 {
			continue
		}
		out = append(out, Line{Rho: float64(v[0]), Theta: float64(v[1])})
	}
	return out
}

func clahe(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	in, err := toMat(src)
	if err != nil {
		fallback("clahe", err)
		return nativeCLAHE(src, clipLimit, tiles)
	}
	defer in.Close()
	c := gocv.NewCLAHEWithParams(clipLimit, image.Point{X: tiles, Y: tiles})
	defer c.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	if err := c.Apply(in, &dst); err != nil {
		fallback("clahe", err)
		return nativeCLAHE(src, clipLimit, tiles)
	}
	return fromMat(dst)
}

func laplacian(src *image.Gray) []float64 {
	in, err := toMat(src)
	if err != nil {
		fallback("laplacian", err)
		return nativeLaplacian(src)
	}
	defer in.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	// ksize 1 is the 4-neighbour kernel.
	if err := gocv.Laplacian(in, &dst, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderReflect101); err != nil {
		fallback("laplacian", err)
		return nativeLaplacian(src)
	}
	data, err := dst.DataPtrFloat64()
	if err != nil {
		fallback("laplacian", err)
		return nativeLaplacian(src)
	}
	return append([]float64(nil), data...)
}

func otsu(src *image.Gray) uint8 {
	in, err := toMat(src)
	if err != nil {
		fallback("otsu", err)
		return nativeOtsu(src)
	}
	defer in.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	t := gocv.Threshold(in, &dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return uint8(min(max(t, 0), 255))
}
