// Package batch scans many image files on the pipeline worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
)

// Item is the outcome for one file.
type Item struct {
	Path   string
	Result *pipeline.ScanResult
	Err    error
}

// Result holds the result of batch processing.
type Result struct {
	Items       []Item
	Duration    time.Duration
	WorkerCount int
}

// Stats summarizes a batch.
type Stats struct {
	Total    int
	Found    int
	NotFound int
	Failed   int
}

// ProcessBatch discovers the image files below paths and scans them in
// parallel. Unless cfg.ContinueOnError is set, any failed file turns into an
// error after all files were processed.
func ProcessBatch(ctx context.Context, paths []string, cfg *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	b := pipeline.NewBuilder().WithConfig(cfg.Pipeline).WithParallelWorkers(cfg.Workers).WithDebugDir(cfg.DebugDir)
	if cfg.ShowProgress && !cfg.Quiet {
		b = b.WithProgressCallback(
			pipeline.NewConsoleProgressCallback(os.Stderr, "Scanning: ").WithUpdateInterval(cfg.ProgressInterval))
	}
	sc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan pipeline: %w", err)
	}

	start := time.Now()
	items, err := sc.ScanParallel(ctx, fileSources(files))
	res := &Result{
		Items:       make([]Item, len(files)),
		Duration:    time.Since(start),
		WorkerCount: sc.Config().Parallel.MaxWorkers,
	}
	for i, it := range items {
		res.Items[i] = Item{Path: files[i], Result: it.Result, Err: it.Err}
	}
	if err != nil {
		return res, fmt.Errorf("batch processing interrupted: %w", err)
	}
	if !cfg.ContinueOnError {
		if st := res.Stats(); st.Failed > 0 {
			return res, fmt.Errorf("%d of %d images failed", st.Failed, st.Total)
		}
	}
	return res, nil
}

// Stats counts the outcomes.
func (r *Result) Stats() Stats {
	st := Stats{Total: len(r.Items)}
	for _, it := range r.Items {
		switch {
		case it.Err != nil:
			st.Failed++
		case it.Result.Found():
			st.Found++
		default:
			st.NotFound++
		}
	}
	return st
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return FormatItems(r.Items, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	return WriteOutput(w, output, outputFile)
}

// WriteOutput writes output to outputFile, or to w when outputFile is empty.
func WriteOutput(w io.Writer, output, outputFile string) error {
	if outputFile == "" {
		_, err := io.WriteString(w, output)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	st := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", st.Total)
	_, _ = fmt.Fprintf(w, "  Found: %d\n", st.Found)
	_, _ = fmt.Fprintf(w, "  Not found: %d\n", st.NotFound)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", st.Failed)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if st.Total > 0 && r.Duration > 0 {
		_, _ = fmt.Fprintf(w, "  Throughput: %.1f images/sec\n", float64(st.Total)/r.Duration.Seconds())
	}
}
