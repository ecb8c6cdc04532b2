package pipeline

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/MeKo-Tech/barscan/internal/barcode"
	"github.com/MeKo-Tech/barscan/internal/deskew"
	"github.com/MeKo-Tech/barscan/internal/imgproc"
	"github.com/MeKo-Tech/barscan/internal/testutil"
)

// scriptedDecoder answers each call from a script keyed by 1-based call number.
type scriptedDecoder struct {
	mu      sync.Mutex
	calls   int
	respond func(call int) ([]barcode.Result, error)
}

func (d *scriptedDecoder) Decode(_ context.Context, _ image.Image, _ barcode.Options) ([]barcode.Result, error) {
	d.mu.Lock()
	d.calls++
	call := d.calls
	d.mu.Unlock()
	if d.respond == nil {
		return nil, nil
	}
	return d.respond(call)
}

func (d *scriptedDecoder) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func hitAt(n int, hits ...barcode.Result) func(int) ([]barcode.Result, error) {
	return func(call int) ([]barcode.Result, error) {
		if call == n {
			return hits, nil
		}
		return nil, nil
	}
}

var sampleHit = barcode.Result{Type: barcode.FormatEAN13, Value: testutil.SampleEAN13}

// uprightOnlyDecoder recognizes a symbol only when the image shows vertical,
// unskewed bars.
type uprightOnlyDecoder struct {
	est *deskew.Estimator
	mu  sync.Mutex
	n   int
}

func newUprightOnlyDecoder() *uprightOnlyDecoder {
	return &uprightOnlyDecoder{est: deskew.New(deskew.DefaultConfig())}
}

func (d *uprightOnlyDecoder) Decode(_ context.Context, img image.Image, _ barcode.Options) ([]barcode.Result, error) {
	d.mu.Lock()
	d.n++
	d.mu.Unlock()

	g := imgproc.ToGray(img)
	small, err := imgproc.Scale(g, 0.5)
	if err != nil {
		return nil, nil
	}
	lines := imgproc.HoughLines(imgproc.Canny(small, 50, 150), 1, math.Pi/180, 80)
	vertical := 0
	for _, l := range lines {
		if l.ThetaDegrees() < 0.5 {
			vertical++
		}
	}
	if vertical < 10 {
		return nil, nil
	}
	if _, skewed := d.est.Estimate(g); skewed {
		return nil, nil
	}
	return []barcode.Result{sampleHit}, nil
}

// slowDecoder never recognizes anything and takes delay per call.
type slowDecoder struct{ delay time.Duration }

func (d slowDecoder) Decode(ctx context.Context, _ image.Image, _ barcode.Options) ([]barcode.Result, error) {
	select {
	case <-time.After(d.delay):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recordingSink keeps the candidate labels it has seen.
type recordingSink struct {
	mu     sync.Mutex
	labels []string
}

func (r *recordingSink) Save(c Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, c.Tier.String()+":"+c.Transform)
}
