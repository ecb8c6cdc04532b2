package pipeline

import (
	"errors"
	"image"
	"strings"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/MeKo-Tech/barscan/internal/quality"
)

var (
	// ErrInvalidInput is returned when Scan receives a nil or empty frame.
	ErrInvalidInput = errors.New("pipeline: invalid input image")
	// ErrInvalidCandidate marks a transform that produced no usable image.
	ErrInvalidCandidate = errors.New("pipeline: invalid candidate")
)

// Tier is a stage of the recovery pipeline. Tiers run in ascending order.
type Tier int

const (
	TierNone Tier = iota
	TierFast
	TierEnhanced
	TierFixedThreshold
	TierAngleCorrection
	TierDeep
)

// Tiers lists the executable tiers in order.
var Tiers = []Tier{TierFast, TierEnhanced, TierFixedThreshold, TierAngleCorrection, TierDeep}

func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierEnhanced:
		return "enhanced"
	case TierFixedThreshold:
		return "fixed_threshold"
	case TierAngleCorrection:
		return "angle_correction"
	case TierDeep:
		return "deep"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseTier maps a tier name back to a Tier; unknown names yield TierNone.
func ParseTier(s string) Tier {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t
		}
	}
	return TierNone
}

// Candidate is one transformed image awaiting a decode attempt.
type Candidate struct {
	Tier      Tier
	Transform string
	Image     *image.Gray
}

// ScanResult is the outcome of one scan. Main and Extension are empty when
// nothing was recognized.
type ScanResult struct {
	Main      string         `json:"main"`
	Extension string         `json:"extension"`
	Symbology barcode.Format `json:"symbology"`
	Tier      Tier           `json:"tier"`
	Transform string         `json:"transform,omitempty"`
	// Attempts counts decoder invocations.
	Attempts int `json:"attempts"`
	// Gated is set when the quality gate stopped the scan.
	Gated bool `json:"gated,omitempty"`
	// Quality is only populated when the scan reached the quality gate.
	Quality *quality.Metrics `json:"quality,omitempty"`
}

// Found reports whether a main symbol was recognized.
func (r *ScanResult) Found() bool { return r != nil && r.Main != "" }
