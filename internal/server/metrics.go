package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pictext_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pictext_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OCR processing metrics
	ocrRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pictext_ocr_requests_total",
			Help: "Total number of OCR requests",
		},
		[]string{"type", "status"}, // type: single, batch
	)

	ocrProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pictext_ocr_processing_duration_seconds",
			Help:    "OCR processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"type"}, // type: single, batch
	)

	ocrTextLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pictext_ocr_text_length",
			Help:    "Length of extracted text",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"type"},
	)

	ocrEngineUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pictext_ocr_engine_used_total",
			Help: "Total number of extractions served per engine",
		},
		[]string{"engine"}, // engine: cloud_vision, tesseract
	)

	// Cache metrics
	cacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pictext_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation"}, // operation: hit, miss
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pictext_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pictext_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pictext_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
