package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/utils"
	"github.com/MeKo-Tech/barscan/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, _, _ := version.Info()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: v,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// scanHandler decodes the multipart field "image" and scans it.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.scanner == nil {
		s.writeErrorResponse(w, "Scanner not initialized", http.StatusServiceUnavailable)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := utils.ReadImage(file, limit)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	res, err := s.scanner.ScanImage(ctx, img)
	elapsed := time.Since(start)
	observeScan(res, err, elapsed)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pipeline.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		s.writeErrorResponse(w, fmt.Sprintf("Scan failed: %v", err), status)
		return
	}

	slog.Info("Scan completed", "file", header.Filename, "found", res.Found(),
		"tier", res.Tier, "attempts", res.Attempts, "duration", elapsed)
	writeJSON(w, http.StatusOK, toScanResponse(res, elapsed))
}

// batchScanHandler scans the images of a JSON batch request on the worker pool.
func (s *Server) batchScanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.scanner == nil {
		s.writeErrorResponse(w, "Scanner not initialized", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	var req BatchScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Failed to parse JSON request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Images) == 0 {
		s.writeErrorResponse(w, "No images provided in batch request", http.StatusBadRequest)
		return
	}
	if len(req.Images) > s.maxBatchSize {
		s.writeErrorResponse(w, fmt.Sprintf("Batch size too large (maximum %d items)", s.maxBatchSize),
			http.StatusBadRequest)
		return
	}

	sources := make([]pipeline.Source, len(req.Images))
	for i, item := range req.Images {
		data := item.Data
		sources[i] = func() (image.Image, error) {
			if len(data) == 0 {
				return nil, errors.New("no image data provided")
			}
			img, _, err := utils.ReadImage(bytes.NewReader(data), int64(len(data)))
			return img, err
		}
	}

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	start := time.Now()
	items, err := s.scanner.ScanParallel(ctx, sources)
	if err != nil && items == nil {
		s.writeErrorResponse(w, fmt.Sprintf("Batch scan failed: %v", err), http.StatusInternalServerError)
		return
	}

	resp := BatchScanResponse{
		Success: true,
		Results: make([]BatchScanResult, len(items)),
		Summary: BatchSummary{TotalItems: len(items)},
	}
	for i, item := range items {
		out := BatchScanResult{Name: req.Images[i].Name}
		switch {
		case item.Err != nil:
			out.Error = item.Err.Error()
			resp.Summary.Failed++
			resp.Success = false
		case item.Result.Found():
			out.ScanResponse = toScanResponse(item.Result, 0)
			resp.Summary.Found++
		default:
			out.ScanResponse = toScanResponse(item.Result, 0)
			resp.Summary.NotFound++
		}
		observeScan(item.Result, item.Err, 0)
		resp.Results[i] = out
	}
	resp.Summary.TotalDuration = time.Since(start).Seconds()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(parent, s.timeout)
	}
	return context.WithCancel(parent)
}

// toScanResponse flattens a pipeline result. "upc" mirrors "main" for older clients.
func toScanResponse(res *pipeline.ScanResult, elapsed time.Duration) ScanResponse {
	out := ScanResponse{
		Success:      true,
		Attempts:     res.Attempts,
		Gated:        res.Gated,
		Quality:      res.Quality,
		ProcessingMs: elapsed.Milliseconds(),
	}
	if !res.Found() {
		return out
	}
	out.Main = optional(res.Main)
	out.UPC = optional(res.Main)
	out.Extension = optional(res.Extension)
	out.Symbology = res.Symbology.String()
	out.Tier = res.Tier.String()
	out.Transform = res.Transform
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func observeScan(res *pipeline.ScanResult, err error, elapsed time.Duration) {
	outcome, tier := "error", pipeline.TierNone
	switch {
	case err != nil:
	case res.Found():
		outcome, tier = "found", res.Tier
	case res.Gated:
		outcome = "gated"
	default:
		outcome = "not_found"
	}
	scansTotal.WithLabelValues(outcome, tier.String()).Inc()
	if res != nil {
		scanAttempts.Observe(float64(res.Attempts))
	}
	if elapsed > 0 {
		scanDuration.Observe(elapsed.Seconds())
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ScanResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
