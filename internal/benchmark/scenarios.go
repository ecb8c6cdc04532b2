// Package benchmark measures the scan pipeline against synthetic degraded
// product photos and reports which tier recovers each one.
package benchmark

import (
	"image"
	"slices"

	"github.com/MeKo-Tech/barscan/internal/testutil"
	"github.com/disintegration/imaging"
)

// Scenario is one synthetic capture condition.
type Scenario struct {
	Name        string
	Description string
	// Want is the payload the scan should recover, empty when none is expected.
	Want   string
	Render func() (image.Image, error)
}

func rendered(spec testutil.BarcodeSpec, fn func(*image.Gray) image.Image) func() (image.Image, error) {
	return func() (image.Image, error) {
		img, err := testutil.RenderEAN13(spec)
		if err != nil {
			return nil, err
		}
		return fn(img), nil
	}
}

// DefaultScenarios returns the standard degradation set.
func DefaultScenarios() []Scenario {
	spec := testutil.DefaultBarcodeSpec()
	tall := spec
	tall.ModuleWidth, tall.BarHeight, tall.Margin = 6, 400, 80
	want := spec.Payload

	return []Scenario{
		{
			Name: "upright", Description: "clean upright symbol", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return g }),
		},
		{
			Name: "sideways", Description: "rotated by 90 degrees", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return testutil.Rotate(g, 90) }),
		},
		{
			Name: "upside-down", Description: "rotated by 180 degrees", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return testutil.Rotate(g, 180) }),
		},
		{
			Name: "low-contrast", Description: "contrast reduced by 70 percent", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return imaging.AdjustContrast(g, -70) }),
		},
		{
			Name: "soft-focus", Description: "gaussian blur, sigma 1.5", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return testutil.Blur(g, 1.5) }),
		},
		{
			Name: "tilted-3", Description: "small tilt of 3 degrees", Want: want,
			Render: rendered(spec, func(g *image.Gray) image.Image { return testutil.Rotate(g, 3) }),
		},
		{
			Name: "skewed-7", Description: "tall symbol skewed by 7 degrees", Want: want,
			Render: rendered(tall, func(g *image.Gray) image.Image { return testutil.Rotate(g, 7) }),
		},
		{
			Name: "blank", Description: "uniform white frame",
			Render: func() (image.Image, error) { return testutil.Uniform(320, 200, 255), nil },
		},
	}
}

// FilterScenarios keeps the scenarios whose names are listed. An empty list keeps all.
func FilterScenarios(all []Scenario, names []string) []Scenario {
	if len(names) == 0 {
		return all
	}
	out := make([]Scenario, 0, len(names))
	for _, s := range all {
		if slices.Contains(names, s.Name) {
			out = append(out, s)
		}
	}
	return out
}
