package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MeKo-Tech/barscan/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for the scan API",
		Long: `Start an HTTP server that exposes the barcode scanner.

The server provides the following endpoints:
  POST /scan        - Scan an uploaded image (multipart field "image")
  POST /scan/batch  - Scan several base64 encoded images (JSON body)
  GET  /health      - Health check endpoint
  GET  /metrics     - Prometheus metrics

Examples:
  barscan serve
  barscan serve --host 0.0.0.0 --port 3000 --requests-per-minute 120`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config()
			sc := cfg.Server

			host := stringFlag(cmd, "host", sc.Host)
			port := intFlag(cmd, "port", sc.Port)
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", port)
			}
			timeout := intFlag(cmd, "timeout", sc.TimeoutSec)
			shutdownTimeout := intFlag(cmd, "shutdown-timeout", sc.ShutdownTimeout)

			srv, err := server.NewServer(server.Config{
				Host:              host,
				Port:              port,
				CORSOrigin:        stringFlag(cmd, "cors-origin", sc.CORSOrigin),
				MaxUploadMB:       int64(intFlag(cmd, "max-upload-size", sc.MaxUploadMB)),
				TimeoutSec:        timeout,
				MaxBatchSize:      sc.MaxBatchSize,
				PipelineConfig:    cfg.ToPipelineConfig(),
				RequestsPerMinute: intFlag(cmd, "requests-per-minute", sc.RequestsPerMinute),
				MaxDataMBPerDay:   int64(intFlag(cmd, "max-data-per-day", sc.MaxDataMBPerDay)),
				TrustedProxies:    sliceFlag(cmd, "trusted-proxy", sc.TrustedProxies),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize server: %w", err)
			}

			mux := http.NewServeMux()
			srv.SetupRoutes(mux)
			httpServer := &http.Server{
				Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       time.Duration(timeout) * time.Second,
				WriteTimeout:      time.Duration(timeout+5) * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Starting scan server", "host", host, "port", port)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				slog.Info("Received shutdown signal")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server shutdown: %w", err)
			}
			slog.Info("Graceful shutdown completed")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("host", "H", "localhost", "server host")
	f.IntP("port", "p", 8080, "server port")
	f.String("cors-origin", "*", "CORS allowed origins")
	f.Int("max-upload-size", 20, "maximum upload size in MB")
	f.Int("timeout", 30, "request timeout in seconds")
	f.Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	f.Int("requests-per-minute", 0, "maximum requests per minute per client (0 = unlimited)")
	f.Int("max-data-per-day", 0, "maximum upload volume per client and day in MB (0 = unlimited)")
	f.StringSlice("trusted-proxy", nil, "proxy IP or CIDR allowed to set X-Forwarded-For (repeatable)")
	return cmd
}
