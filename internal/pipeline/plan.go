package pipeline

import (
	"fmt"
	"image"
	"iter"

	"github.com/MeKo-Tech/barscan/internal/imgproc"
	"github.com/MeKo-Tech/barscan/internal/orientation"
)

// frames are the two inputs of a scan.
type frames struct {
	original *image.Gray
	enhanced *image.Gray
}

// tierPlan is one entry of the ordered strategy list. Plans flagged
// gated only run when the original frame passed the quality gate.
type tierPlan struct {
	tier     Tier
	gated    bool
	generate func(frames) iter.Seq2[Candidate, error]
}

func (s *Scanner) tierPlans() []tierPlan {
	return []tierPlan{
		{tier: TierFast, generate: func(f frames) iter.Seq2[Candidate, error] {
			return s.cardinal(TierFast, f.original)
		}},
		{tier: TierEnhanced, generate: func(f frames) iter.Seq2[Candidate, error] {
			return s.cardinal(TierEnhanced, f.enhanced)
		}},
		{tier: TierFixedThreshold, generate: s.fixedThreshold},
		{tier: TierAngleCorrection, gated: true, generate: s.angleCorrection},
		{tier: TierDeep, gated: true, generate: s.deep},
	}
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
}

func (s *Scanner) cardinal(tier Tier, g *image.Gray) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for r, err := range orientation.Cardinal(g, s.cfg.CardinalAngles) {
			if !yield(Candidate{Tier: tier, Transform: r.Name(), Image: r.Image}, invalid(err)) {
				return
			}
		}
	}
}

func (s *Scanner) fixedThreshold(f frames) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for c, err := range s.strategy.Fixed(f.original) {
			if !yield(Candidate{Tier: TierFixedThreshold, Transform: c.Name, Image: c.Image}, invalid(err)) {
				return
			}
		}
	}
}

func (s *Scanner) angleCorrection(f frames) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for r, err := range orientation.SmallAngle(f.original, s.cfg.SmallAngles, orientation.White) {
			if !yield(Candidate{Tier: TierAngleCorrection, Transform: r.Name(), Image: r.Image}, invalid(err)) {
				return
			}
		}
	}
}

// deep tries, for each deep rotation, the upscale-and-clean sequence and then
// a deskewed copy and its inversion. Deskew is only estimated once the
// threshold candidates of that rotation have failed.
func (s *Scanner) deep(f frames) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for r, err := range orientation.Cardinal(f.original, s.cfg.DeepAngles) {
			if err != nil {
				if !yield(Candidate{Tier: TierDeep, Transform: r.Name()}, invalid(err)) {
					return
				}
				continue
			}
			for c, err := range s.strategy.UpscaleAndClean(r.Image) {
				cand := Candidate{Tier: TierDeep, Transform: r.Name() + "/" + c.Name, Image: c.Image}
				if !yield(cand, invalid(err)) {
					return
				}
			}

			angle, ok := s.deskew.Estimate(r.Image)
			if !ok {
				continue
			}
			name := fmt.Sprintf("%s/deskew%+.1f", r.Name(), angle)
			fixed, err := s.deskew.Correct(r.Image, angle)
			if !yield(Candidate{Tier: TierDeep, Transform: name, Image: fixed}, invalid(err)) {
				return
			}
			if err != nil {
				continue
			}
			if !yield(Candidate{Tier: TierDeep, Transform: name + "-inv", Image: imgproc.Invert(fixed)}, nil) {
				return
			}
		}
	}
}
