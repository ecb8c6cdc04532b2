package imgproc

import (
	"image"
	"math"
	"sort"

	"github.com/MeKo-Tech/barscan/internal/mempool"
)

// Line is a straight line in Hesse normal form: x*cos(Theta) + y*sin(Theta) = Rho.
// Theta is in radians within [0, pi).
type Line struct {
	Rho   float64
	Theta float64
	Votes int
}

// ThetaDegrees returns the normal angle of the line in degrees.
func (l Line) ThetaDegrees() float64 { return l.Theta * 180 / math.Pi }

// HoughLines runs the standard Hough transform over a binary edge map and
// returns the accumulator peaks with more than threshold votes, strongest first.
func HoughLines(edges *image.Gray, rho, theta float64, threshold int) []Line {
	if IsEmpty(edges) || rho <= 0 || theta <= 0 {
		return nil
	}
	return houghLines(packed(edges), rho, theta, threshold)
}

func nativeHoughLines(src *image.Gray, rho, theta float64, threshold int) []Line {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	numAngle := int(math.Round(math.Pi / theta))
	numRho := int(math.Round(float64((w+h)*2+1) / rho))
	if numAngle < 1 || numRho < 1 {
		return nil
	}

	tabSin := make([]float64, numAngle)
	tabCos := make([]float64, numAngle)
	for n := range numAngle {
		s, c := math.Sincos(float64(n) * theta)
		tabSin[n] = s / rho
		tabCos[n] = c / rho
	}

	// Padded by one cell on every side so peak detection needs no bounds checks.
	stride := numRho + 2
	acc := mempool.GetInts((numAngle + 2) * stride)
	defer mempool.PutInts(acc)
	offset := (numRho - 1) / 2
	for y := range h {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			for n := range numAngle {
				r := int(math.Round(float64(x)*tabCos[n]+float64(y)*tabSin[n])) + offset
				acc[(n+1)*stride+r+1]++
			}
		}
	}

	type peak struct{ idx, votes int }
	var peaks []peak
	for n := range numAngle {
		for r := range numRho {
			base := (n+1)*stride + r + 1
			v := acc[base]
			if v > threshold &&
				v > acc[base-1] && v >= acc[base+1] &&
				v > acc[base-stride] && v >= acc[base+stride] {
				peaks = append(peaks, peak{idx: base, votes: v})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		if peaks[i].votes != peaks[j].votes {
			return peaks[i].votes > peaks[j].votes
		}
		return peaks[i].idx < peaks[j].idx
	})

	lines := make([]Line, 0, len(peaks))
	for _, p := range peaks {
		n := p.idx/stride - 1
		r := p.idx - (n+1)*stride - 1
		lines = append(lines, Line{
			Rho:   float64(r-offset) * rho,
			Theta: float64(n) * theta,
			Votes: p.votes,
		})
	}
	return lines
}
