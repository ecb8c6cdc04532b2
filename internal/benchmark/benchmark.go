package benchmark

import (
	"context"
	"encoding/csv"
	"fmt"
	"image"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/MeKo-Tech/barscan/internal/common"
	"github.com/MeKo-Tech/barscan/internal/pipeline"
)

// Result holds the measurements of one scenario.
type Result struct {
	Name       string
	Iterations int
	Duration   time.Duration // total over all iterations
	Allocated  uint64        // bytes allocated over all iterations
	Found      bool
	Correct    bool
	Code       string
	Tier       string
	Attempts   int
	Gated      bool
	Error      error
}

// Average returns the mean duration of one scan.
func (r Result) Average() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Iterations)
}

func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: error: %v", r.Name, r.Error)
	}
	outcome := "not found"
	switch {
	case r.Found && r.Correct:
		outcome = fmt.Sprintf("%s (tier %s)", r.Code, r.Tier)
	case r.Found:
		outcome = fmt.Sprintf("WRONG %s (tier %s)", r.Code, r.Tier)
	case r.Gated:
		outcome = "gated"
	}
	return fmt.Sprintf("%s: %s, %d attempts, avg %v over %d runs, %d KB/scan",
		r.Name, outcome, r.Attempts, r.Average().Round(time.Microsecond), r.Iterations,
		r.Allocated/uint64(max(r.Iterations, 1))/1024)
}

// Suite runs scenarios through one scanner.
type Suite struct {
	scanner *pipeline.Scanner
	results []Result
}

// NewSuite creates a suite around sc.
func NewSuite(sc *pipeline.Scanner) *Suite {
	return &Suite{scanner: sc}
}

// Run measures every scenario for the given number of iterations. Scenario
// failures are reported in the results; only a cancelled ctx stops the run.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario, iterations int) ([]Result, error) {
	iterations = max(iterations, 1)
	s.results = make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return s.results, err
		}
		s.results = append(s.results, s.runScenario(ctx, sc, iterations))
	}
	return s.results, nil
}

func (s *Suite) runScenario(ctx context.Context, sc Scenario, iterations int) Result {
	res := Result{Name: sc.Name, Iterations: iterations}
	var img image.Image
	img, res.Error = sc.Render()
	if res.Error != nil {
		return res
	}

	runtime.GC()
	memBefore := common.GetMemoryStats()
	timer := common.NewNamedTimer(sc.Name)

	var last *pipeline.ScanResult
	for range iterations {
		out, err := s.scanner.ScanImage(ctx, img)
		if err != nil {
			res.Error = err
			break
		}
		last = out
	}

	res.Duration = timer.Stop()
	res.Allocated = common.GetMemoryStats().AllocatedSince(memBefore)
	if last != nil {
		res.Found = last.Found()
		res.Code = last.Main
		res.Correct = last.Found() && last.Main == sc.Want
		res.Tier = last.Tier.String()
		res.Attempts = last.Attempts
		res.Gated = last.Gated
	}
	return res
}

// Results returns the results of the last Run.
func (s *Suite) Results() []Result { return s.results }

// PrintResults writes one line per scenario.
func (s *Suite) PrintResults(w io.Writer) {
	_, _ = fmt.Fprintln(w, "\nScan Benchmark Results:")
	_, _ = fmt.Fprintln(w, "=======================")
	for _, r := range s.results {
		_, _ = fmt.Fprintln(w, r.String())
	}
	_, _ = fmt.Fprintln(w)
}

// WriteCSV writes the results with a header row.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"scenario", "found", "correct", "code", "tier", "attempts", "gated", "avg_ms", "kb_per_scan", "error"})
	for _, r := range results {
		errText := ""
		if r.Error != nil {
			errText = r.Error.Error()
		}
		_ = cw.Write([]string{
			r.Name,
			strconv.FormatBool(r.Found),
			strconv.FormatBool(r.Correct),
			r.Code,
			r.Tier,
			strconv.Itoa(r.Attempts),
			strconv.FormatBool(r.Gated),
			strconv.FormatFloat(float64(r.Average().Microseconds())/1000, 'f', 2, 64),
			strconv.FormatUint(r.Allocated/uint64(max(r.Iterations, 1))/1024, 10),
			errText,
		})
	}
	cw.Flush()
	return cw.Error()
}
