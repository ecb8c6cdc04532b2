// Package threshold generates the ordered binarization candidates tried by
// the scan pipeline, cheapest and most likely first.
package threshold

import (
	"fmt"
	"image"
	"iter"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
)

// Candidate is one photometric variant of an image.
type Candidate struct {
	Name  string
	Image *image.Gray
}

// Config controls the candidate sequence.
type Config struct {
	// Levels are the global thresholds tried by the cheap tiers.
	Levels []int `mapstructure:"levels" yaml:"levels" json:"levels"`
	// DeepLevels are the global thresholds tried after upscaling.
	DeepLevels []int `mapstructure:"deep_levels" yaml:"deep_levels" json:"deep_levels"`
	// UpscaleBelow is the width under which images are enlarged before cleaning.
	UpscaleBelow int `mapstructure:"upscale_below" yaml:"upscale_below" json:"upscale_below"`
	// UpscaleFactor is the enlargement factor.
	UpscaleFactor float64 `mapstructure:"upscale_factor" yaml:"upscale_factor" json:"upscale_factor"`
	// SmoothSigma is the Gaussian applied before Otsu on resampled images; 0 disables.
	SmoothSigma float64 `mapstructure:"smooth_sigma" yaml:"smooth_sigma" json:"smooth_sigma"`
}

// DefaultConfig returns the production candidate sequence.
func DefaultConfig() Config {
	return Config{
		Levels:        []int{140, 160},
		DeepLevels:    []int{140, 160, 180, 120},
		UpscaleBelow:  400,
		UpscaleFactor: 3,
		SmoothSigma:   1.0,
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	for _, l := range append(append([]int(nil), c.Levels...), c.DeepLevels...) {
		if l < 0 || l > 255 {
			return fmt.Errorf("threshold level %d out of range [0,255]", l)
		}
	}
	if c.UpscaleBelow < 0 {
		return fmt.Errorf("upscale_below must be >= 0, got %d", c.UpscaleBelow)
	}
	if c.UpscaleFactor < 1 {
		return fmt.Errorf("upscale_factor must be >= 1, got %g", c.UpscaleFactor)
	}
	if c.SmoothSigma < 0 {
		return fmt.Errorf("smooth_sigma must be >= 0, got %g", c.SmoothSigma)
	}
	return nil
}

// Fixed yields g binarized at each level, in order.
func Fixed(g *image.Gray, levels []int) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for _, l := range levels {
			if !yield(fixed(g, l)) {
				return
			}
		}
	}
}

func fixed(g *image.Gray, level int) (Candidate, error) {
	name := fmt.Sprintf("fixed%d", level)
	if imgproc.IsEmpty(g) {
		return Candidate{Name: name}, imgproc.ErrEmptyImage
	}
	return Candidate{Name: name, Image: imgproc.Threshold(g, uint8(max(0, min(255, level))))}, nil
}

// Options selects the optional parts of Sequence.
type Options struct {
	Identity    bool    // start with the untouched image
	SmoothSigma float64 // Gaussian before the plain Otsu candidate; 0 disables
}

// Sequence yields the candidates in priority order:
// identity, fixed levels, Otsu, horizontal blur then Otsu, and the inversions
// of the two Otsu results. Expensive candidates are only computed on demand.
func Sequence(g *image.Gray, levels []int, opts Options) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		if imgproc.IsEmpty(g) {
			yield(Candidate{Name: "identity"}, imgproc.ErrEmptyImage)
			return
		}
		if opts.Identity && !yield(Candidate{Name: "identity", Image: g}, nil) {
			return
		}
		for c, err := range Fixed(g, levels) {
			if !yield(c, err) {
				return
			}
		}

		src := g
		if opts.SmoothSigma > 0 {
			src = imgproc.GaussianBlur(g, opts.SmoothSigma)
		}
		otsu := imgproc.Threshold(src, imgproc.Otsu(src))
		if !yield(Candidate{Name: "otsu", Image: otsu}, nil) {
			return
		}

		blurred := imgproc.HorizontalBlur(g)
		hblur := imgproc.Threshold(blurred, imgproc.Otsu(blurred))
		if !yield(Candidate{Name: "hblur-otsu", Image: hblur}, nil) {
			return
		}

		if !yield(Candidate{Name: "otsu-inv", Image: imgproc.Invert(otsu)}, nil) {
			return
		}
		yield(Candidate{Name: "hblur-otsu-inv", Image: imgproc.Invert(hblur)}, nil)
	}
}

// Strategy binds a Config to the candidate generators.
type Strategy struct {
	cfg Config
}

// New returns a Strategy for cfg.
func New(cfg Config) Strategy { return Strategy{cfg: cfg} }

// Config returns the strategy configuration.
func (s Strategy) Config() Config { return s.cfg }

// Fixed yields the cheap-tier global thresholds.
func (s Strategy) Fixed(g *image.Gray) iter.Seq2[Candidate, error] {
	return Fixed(g, s.cfg.Levels)
}

// Candidates yields the full cheap sequence, identity first.
func (s Strategy) Candidates(g *image.Gray) iter.Seq2[Candidate, error] {
	return Sequence(g, s.cfg.Levels, Options{Identity: true})
}

// UpscaleAndClean enlarges narrow images, then yields the deep threshold
// sequence over the result. Identity is not part of the sequence.
func (s Strategy) UpscaleAndClean(g *image.Gray) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		if imgproc.IsEmpty(g) {
			yield(Candidate{Name: "upscale"}, imgproc.ErrEmptyImage)
			return
		}
		src, prefix, sigma := g, "", 0.0
		if g.Bounds().Dx() < s.cfg.UpscaleBelow && s.cfg.UpscaleFactor > 1 {
			up, err := imgproc.Scale(g, s.cfg.UpscaleFactor)
			if err != nil {
				yield(Candidate{Name: "upscale"}, fmt.Errorf("upscale: %w", err))
				return
			}
			src = up
			prefix = fmt.Sprintf("up%gx-", s.cfg.UpscaleFactor)
			sigma = s.cfg.SmoothSigma
		}
		for c, err := range Sequence(src, s.cfg.DeepLevels, Options{SmoothSigma: sigma}) {
			c.Name = prefix + c.Name
			if !yield(c, err) {
				return
			}
		}
	}
}
