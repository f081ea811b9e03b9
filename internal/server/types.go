// Package server exposes the extraction pipeline over HTTP: single and
// batch extraction, cache inspection, health, Prometheus metrics, and
// a WebSocket channel streaming per-item batch progress.
package server

import (
	"context"
	"net/http"

	"github.com/pictext/pictext/internal/cache"
	"github.com/pictext/pictext/internal/config"
	"github.com/pictext/pictext/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pipelineInterface defines the methods the server needs from the
// pipeline, so handler tests can substitute a fake.
type pipelineInterface interface {
	ExtractText(ctx context.Context, content []byte, filename string, opts pipeline.Options) (*pipeline.Result, error)
	ExtractBatch(ctx context.Context, inputs []pipeline.BatchInput, opts pipeline.Options) (*pipeline.BatchResult, error)
	CacheStats(ctx context.Context) (cache.Stats, bool)
	ClearCache(ctx context.Context) error
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline       pipelineInterface
	corsOrigin     string
	maxUploadBytes int64
	maxBatchSize   int
}

// NewServer creates a server around an assembled pipeline.
func NewServer(cfg *config.Config, pl *pipeline.Pipeline) *Server {
	return &Server{
		pipeline:       pl,
		corsOrigin:     cfg.Server.CORSOrigin,
		maxUploadBytes: cfg.Upload.MaxFileSize,
		maxBatchSize:   cfg.Upload.MaxBatchSize,
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract-text", s.corsMiddleware(s.extractTextHandler))
	mux.HandleFunc("/extract-text/batch", s.corsMiddleware(s.extractBatchHandler))
	mux.HandleFunc("/cache/stats", s.corsMiddleware(s.cacheStatsHandler))
	mux.HandleFunc("/cache", s.corsMiddleware(s.cacheClearHandler))
	mux.HandleFunc("/ocr/ws", s.ocrWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorBody carries a machine-readable code plus a human message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON shape of every error this API returns.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// CacheStatsResponse is the /cache/stats payload.
type CacheStatsResponse struct {
	Enabled bool         `json:"enabled"`
	Stats   *cache.Stats `json:"stats,omitempty"`
}
