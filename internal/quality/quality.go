// Package quality scores how promising a grayscale image is for barcode
// recovery. The score gates the expensive tiers of the scan pipeline.
package quality

import (
	"image"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
	"gonum.org/v1/gonum/stat"
)

// Metrics are the quality measurements of one image.
type Metrics struct {
	Sharpness   float64 `json:"sharpness"`    // variance of the Laplacian response
	Contrast    float64 `json:"contrast"`     // standard deviation of intensities
	EdgeDensity float64 `json:"edge_density"` // fraction of Canny edge pixels
	Scannable   bool    `json:"scannable"`
}

// Thresholds holds the cutoffs and edge detector bounds used by AssessWith.
type Thresholds struct {
	MinSharpness   float64 `mapstructure:"min_sharpness" yaml:"min_sharpness" json:"min_sharpness"`
	MinContrast    float64 `mapstructure:"min_contrast" yaml:"min_contrast" json:"min_contrast"`
	MinEdgeDensity float64 `mapstructure:"min_edge_density" yaml:"min_edge_density" json:"min_edge_density"`
	CannyLow       float64 `mapstructure:"canny_low" yaml:"canny_low" json:"canny_low"`
	CannyHigh      float64 `mapstructure:"canny_high" yaml:"canny_high" json:"canny_high"`
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSharpness:   50,
		MinContrast:    20,
		MinEdgeDensity: 0.01,
		CannyLow:       50,
		CannyHigh:      150,
	}
}

// Assess scores g with DefaultThresholds.
func Assess(g *image.Gray) Metrics { return AssessWith(g, DefaultThresholds()) }

// AssessWith scores g. An image is scannable only when every metric is
// strictly above its cutoff. Empty images score zero.
func AssessWith(g *image.Gray, th Thresholds) Metrics {
	if imgproc.IsEmpty(g) {
		return Metrics{}
	}

	m := Metrics{
		Sharpness: stat.PopVariance(imgproc.Laplacian(g), nil),
		Contrast:  stat.PopStdDev(imgproc.Intensities(g), nil),
	}
	edges := imgproc.Canny(g, th.CannyLow, th.CannyHigh)
	b := g.Bounds()
	m.EdgeDensity = float64(imgproc.CountNonZero(edges)) / float64(b.Dx()*b.Dy())

	m.Scannable = m.Sharpness > th.MinSharpness &&
		m.Contrast > th.MinContrast &&
		m.EdgeDensity > th.MinEdgeDensity
	return m
}
