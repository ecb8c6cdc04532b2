package imgproc

import (
	"image"

	"github.com/disintegration/imaging"
)

// Threshold binarizes g: pixels strictly above t become 255, the rest 0.
func Threshold(g *image.Gray, t uint8) *image.Gray {
	src := packed(g)
	out := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// Histogram returns the 256-bin intensity histogram of g.
func Histogram(g *image.Gray) [256]int {
	var hist [256]int
	src := packed(g)
	for _, v := range src.Pix {
		hist[v]++
	}
	return hist
}

// Otsu returns the threshold that maximizes the between-class variance of g's
// histogram. Use it with Threshold. A uniform image yields 0.
func Otsu(g *image.Gray) uint8 {
	if IsEmpty(g) {
		return 0
	}
	src := packed(g)
	lo, hi := src.Pix[0], src.Pix[0]
	for _, v := range src.Pix {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo == hi {
		return 0
	}
	return otsu(src)
}

func nativeOtsu(g *image.Gray) uint8 {
	hist := Histogram(g)
	total := 0
	sum := 0.0
	for i, c := range hist {
		total += c
		sum += float64(i * c)
	}
	if total == 0 {
		return 0
	}

	var (
		best     uint8
		bestVar  float64
		weightB  int
		sumB     float64
		foundAny bool
	)
	for t := range 256 {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		d := meanB - meanF
		between := float64(weightB) * float64(weightF) * d * d
		if !foundAny || between > bestVar {
			bestVar = between
			best = uint8(t)
			foundAny = true
		}
	}
	return best
}

// Invert returns the photographic negative of g.
func Invert(g *image.Gray) *image.Gray {
	return ToGray(imaging.Invert(g))
}
