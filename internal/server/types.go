package server

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/MeKo-Tech/barscan/internal/pipeline"
	"github.com/MeKo-Tech/barscan/internal/quality"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// scanner is the part of pipeline.Scanner the server depends on.
type scanner interface {
	ScanImage(ctx context.Context, img image.Image) (*pipeline.ScanResult, error)
	ScanParallel(ctx context.Context, sources []pipeline.Source) ([]pipeline.ItemResult, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	scanner      scanner
	corsOrigin   string
	maxUploadMB  int64
	timeout      time.Duration
	maxBatchSize int
	rateLimiter  *RateLimiter

	// Peers allowed to set X-Forwarded-For and X-Real-IP.
	trustedProxies []netip.Prefix
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	MaxBatchSize   int
	PipelineConfig pipeline.Config

	// Per-client limits, 0 disables them.
	RequestsPerMinute int
	MaxDataMBPerDay   int64

	// TrustedProxies lists the reverse proxy addresses or CIDR ranges whose
	// forwarding headers identify the client. Empty means none are trusted.
	TrustedProxies []string
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ScanResponse is returned by /scan. Absent symbols encode as null.
type ScanResponse struct {
	Success      bool             `json:"success"`
	UPC          *string          `json:"upc"`
	Main         *string          `json:"main"`
	Extension    *string          `json:"extension"`
	Symbology    string           `json:"symbology,omitempty"`
	Tier         string           `json:"tier,omitempty"`
	Transform    string           `json:"transform,omitempty"`
	Attempts     int              `json:"attempts"`
	Gated        bool             `json:"gated,omitempty"`
	Quality      *quality.Metrics `json:"quality,omitempty"`
	ProcessingMs int64            `json:"processing_ms"`
	Error        string           `json:"error,omitempty"`
}

// BatchScanRequest carries several base64 encoded images in one JSON body.
type BatchScanRequest struct {
	Images []BatchImage `json:"images"`
}

// BatchImage is one named image of a batch request.
type BatchImage struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// BatchScanResult is the outcome for one image of a batch.
type BatchScanResult struct {
	Name string `json:"name"`
	ScanResponse
}

// BatchScanResponse is returned by /scan/batch.
type BatchScanResponse struct {
	Success bool              `json:"success"`
	Results []BatchScanResult `json:"results"`
	Summary BatchSummary      `json:"summary"`
}

// BatchSummary provides summary statistics for a batch request.
type BatchSummary struct {
	TotalItems    int     `json:"total_items"`
	Found         int     `json:"found"`
	NotFound      int     `json:"not_found"`
	Failed        int     `json:"failed"`
	TotalDuration float64 `json:"total_duration_seconds"`
}

// NewServer creates a scan server with its own pipeline.
func NewServer(config Config) (*Server, error) {
	if _, err := ParseTrustedProxies(config.TrustedProxies); err != nil {
		return nil, err
	}
	sc, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan pipeline: %w", err)
	}
	return newServer(config, sc), nil
}

func newServer(config Config, sc scanner) *Server {
	s := &Server{
		scanner:      sc,
		corsOrigin:   config.CORSOrigin,
		maxUploadMB:  config.MaxUploadMB,
		timeout:      time.Duration(config.TimeoutSec) * time.Second,
		maxBatchSize: config.MaxBatchSize,
	}
	if s.maxUploadMB <= 0 {
		s.maxUploadMB = 20
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = 16
	}
	if config.RequestsPerMinute > 0 || config.MaxDataMBPerDay > 0 {
		s.rateLimiter = NewRateLimiter(config.RequestsPerMinute, config.MaxDataMBPerDay*1024*1024)
	}
	proxies, err := ParseTrustedProxies(config.TrustedProxies)
	if err != nil {
		slog.Warn("Ignoring trusted proxies", "error", err)
	}
	s.trustedProxies = proxies
	return s
}

// ParseTrustedProxies parses IP addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/scan", s.corsMiddleware(s.rateLimitMiddleware(s.scanHandler)))
	mux.HandleFunc("/scan/batch", s.corsMiddleware(s.rateLimitMiddleware(s.batchScanHandler)))
	mux.Handle("/metrics", promhttp.Handler())
}
