// Package deskew estimates the residual skew of barcode bars and rotates it
// away.
//
// Bars are found as near-vertical Hough lines on a downsampled Canny edge
// map. Angles follow the counter-clockwise-positive convention of the
// imgproc rotate helpers: an image rotated by +7 degrees estimates to about
// +7, and Correct rotates it back by -7.
package deskew

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
	"gonum.org/v1/gonum/stat"
)

// Config controls the estimator.
type Config struct {
	Scale          float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	CannyLow       float64 `mapstructure:"canny_low" yaml:"canny_low" json:"canny_low"`
	CannyHigh      float64 `mapstructure:"canny_high" yaml:"canny_high" json:"canny_high"`
	HoughThreshold int     `mapstructure:"hough_threshold" yaml:"hough_threshold" json:"hough_threshold"`
	// MaxAngle bounds how far from vertical a line may lean to count as a bar.
	MaxAngle float64 `mapstructure:"max_angle" yaml:"max_angle" json:"max_angle"`
	// MinAngle is the smallest skew worth correcting.
	MinAngle float64 `mapstructure:"min_angle" yaml:"min_angle" json:"min_angle"`
	// MinLines is the number of near-vertical lines needed to trust an estimate.
	MinLines int `mapstructure:"min_lines" yaml:"min_lines" json:"min_lines"`
}

// DefaultConfig returns the production estimator settings.
func DefaultConfig() Config {
	return Config{
		Scale:          0.5,
		CannyLow:       50,
		CannyHigh:      150,
		HoughThreshold: 80,
		MaxAngle:       30,
		MinAngle:       0.5,
		MinLines:       5,
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if c.Scale <= 0 || c.Scale > 1 {
		return fmt.Errorf("deskew scale must be in (0,1], got %g", c.Scale)
	}
	if c.HoughThreshold < 1 {
		return fmt.Errorf("hough_threshold must be >= 1, got %d", c.HoughThreshold)
	}
	if c.MaxAngle <= 0 || c.MaxAngle > 90 {
		return fmt.Errorf("max_angle must be in (0,90], got %g", c.MaxAngle)
	}
	if c.MinAngle < 0 || c.MinAngle >= c.MaxAngle {
		return errors.New("min_angle must be >= 0 and below max_angle")
	}
	if c.MinLines < 1 {
		return fmt.Errorf("min_lines must be >= 1, got %d", c.MinLines)
	}
	return nil
}

// Estimator finds and removes bar skew.
type Estimator struct {
	cfg Config
}

// New returns an Estimator for cfg.
func New(cfg Config) *Estimator { return &Estimator{cfg: cfg} }

// Estimate returns the skew of the bars in g and whether a correction is
// warranted. It reports false when fewer than MinLines near-vertical lines
// are found or when the median lean is below MinAngle.
func (e *Estimator) Estimate(g *image.Gray) (float64, bool) {
	if imgproc.IsEmpty(g) {
		return 0, false
	}
	small, err := imgproc.Scale(g, e.cfg.Scale)
	if err != nil {
		return 0, false
	}
	edges := imgproc.Canny(small, e.cfg.CannyLow, e.cfg.CannyHigh)
	lines := imgproc.HoughLines(edges, 1, math.Pi/180, e.cfg.HoughThreshold)
	if len(lines) == 0 {
		return 0, false
	}

	angles := NearVertical(lines, e.cfg.MaxAngle)
	if len(angles) < max(e.cfg.MinLines, 1) {
		slog.Debug("Deskew skipped", "lines", len(lines), "bars", len(angles))
		return 0, false
	}
	median := Median(angles)

	slog.Debug("Deskew estimate", "lines", len(lines), "bars", len(angles), "median", median)

	// Hough normals lean opposite to the bars.
	skew := -median
	if math.Abs(skew) < e.cfg.MinAngle {
		return 0, false
	}
	return skew, true
}

// Correct rotates g by -angle, replicating border pixels and keeping the size.
func (e *Estimator) Correct(g *image.Gray, angle float64) (*image.Gray, error) {
	return imgproc.RotateReplicate(g, -angle)
}

// Median returns the middle value of values, averaging the two middle values
// when the count is even. values is sorted in place.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return stat.Mean(values[mid-1:mid+1], nil)
}

// NearVertical returns the normal angles, in degrees, of lines within
// maxAngle of vertical. Normals in [0, maxAngle) are kept as they are and
// normals in (180-maxAngle, 180] are shifted down by 180.
func NearVertical(lines []imgproc.Line, maxAngle float64) []float64 {
	out := make([]float64, 0, len(lines))
	for _, l := range lines {
		// Rounded so that exact bin angles such as 30 and 150 stay on their side
		// of the half-open bounds.
		deg := math.Round(l.ThetaDegrees()*1e3) / 1e3
		switch {
		case deg >= 0 && deg < maxAngle:
			out = append(out, deg)
		case deg > 180-maxAngle && deg <= 180:
			out = append(out, deg-180)
		}
	}
	return out
}
