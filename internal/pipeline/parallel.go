package pipeline

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"
)

// ParallelConfig holds configuration for scanning many images at once.
type ParallelConfig struct {
	MaxWorkers       int              // Number of parallel workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback // Optional progress reporting
}

// DefaultParallelConfig returns sensible defaults for parallel scanning.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

// Source lazily produces one image for the worker pool, so that large
// batches never hold every decoded photo in memory at the same time.
type Source func() (image.Image, error)

// ImageSource wraps an already decoded image.
func ImageSource(img image.Image) Source {
	return func() (image.Image, error) { return img, nil }
}

// ItemResult is the outcome for one Source, in input order.
type ItemResult struct {
	Index  int
	Result *ScanResult
	Err    error
}

type scanJob struct {
	index  int
	source Source
}

// ScanParallel scans every source on a worker pool and returns the results in
// input order. Per-item failures are reported in ItemResult.Err; the returned
// error is only set when ctx ended during the run.
func (s *Scanner) ScanParallel(ctx context.Context, sources []Source) ([]ItemResult, error) {
	if len(sources) == 0 {
		return nil, errors.New("no images provided")
	}
	cfg := s.cfg.Parallel
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(sources))

	if cfg.ProgressCallback != nil {
		cfg.ProgressCallback.OnStart(len(sources))
		defer cfg.ProgressCallback.OnComplete()
	}

	jobs := make(chan scanJob, len(sources))
	results := make(chan ItemResult, len(sources))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go s.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, src := range sources {
			select {
			case jobs <- scanJob{index: i, source: src}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]ItemResult, len(sources))
	for i := range ordered {
		ordered[i] = ItemResult{Index: i, Err: context.Canceled}
	}
	processed := 0
	for r := range results {
		ordered[r.Index] = r
		processed++
		if cfg.ProgressCallback != nil {
			if r.Err != nil {
				cfg.ProgressCallback.OnError(r.Index, r.Err)
			}
			cfg.ProgressCallback.OnProgress(processed, len(sources))
		}
	}

	if err := ctx.Err(); err != nil {
		return ordered, err
	}
	return ordered, nil
}

func (s *Scanner) worker(ctx context.Context, jobs <-chan scanJob, results chan<- ItemResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			res, err := s.scanSource(ctx, job.source)
			select {
			case results <- ItemResult{Index: job.index, Result: res, Err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scanner) scanSource(ctx context.Context, src Source) (*ScanResult, error) {
	img, err := src()
	if err != nil {
		return nil, err
	}
	return s.ScanImage(ctx, img)
}
