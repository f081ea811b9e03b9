package server

import (
	"io"
	"net/http"
	"time"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/pipeline"
)

// extractBatchHandler processes a multi-file extraction request. The
// HTTP status reflects the aggregate: 200 when every item succeeded,
// 207 for a mix, 500 when every item failed.
func (s *Server) extractBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBody := s.maxUploadBytes*int64(s.maxBatchSize) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		s.writeError(w, formError("server.extractBatch", err, s.maxUploadBytes))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, apierr.New("server.extractBatch", apierr.CodeMissingFile,
			"No files provided in the request"))
		return
	}

	inputs := make([]pipeline.BatchInput, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			s.writeError(w, apierr.Wrap("server.extractBatch", apierr.CodeInternalError,
				"Failed to open uploaded file", err))
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			s.writeError(w, apierr.Wrap("server.extractBatch", apierr.CodeInternalError,
				"Failed to read uploaded file", err))
			return
		}
		uploadSizeBytes.Observe(float64(len(content)))
		inputs = append(inputs, pipeline.BatchInput{Filename: header.Filename, Content: content})
	}

	start := time.Now()
	batch, err := s.pipeline.ExtractBatch(r.Context(), inputs, parseOptions(r))
	if err != nil {
		ocrRequestsTotal.WithLabelValues("batch", "error").Inc()
		s.writeError(w, err)
		return
	}

	status := "success"
	if batch.Failed > 0 {
		status = "partial"
	}
	ocrRequestsTotal.WithLabelValues("batch", status).Inc()
	ocrProcessingDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())

	writeJSON(w, batchStatus(batch), batch)
}

// batchStatus chooses the HTTP status for an aggregate batch result.
func batchStatus(batch *pipeline.BatchResult) int {
	switch {
	case batch.Failed == 0:
		return http.StatusOK
	case batch.Successful == 0:
		return http.StatusInternalServerError
	default:
		return http.StatusMultiStatus
	}
}
