package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/pipeline"
	"github.com/pictext/pictext/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// extractTextHandler processes a single-image extraction request.
func (s *Server) extractTextHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(s.maxUploadBytes + formOverhead); err != nil {
		s.writeError(w, formError("server.extractText", err, s.maxUploadBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, apierr.New("server.extractText", apierr.CodeMissingFile,
			"No file provided in the request"))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, apierr.Wrap("server.extractText", apierr.CodeInternalError,
			"Failed to read uploaded file", err))
		return
	}
	uploadSizeBytes.Observe(float64(len(content)))

	opts := parseOptions(r)
	start := time.Now()
	result, err := s.pipeline.ExtractText(r.Context(), content, header.Filename, opts)
	if err != nil {
		ocrRequestsTotal.WithLabelValues("single", "error").Inc()
		s.writeError(w, err)
		return
	}

	ocrRequestsTotal.WithLabelValues("single", "success").Inc()
	ocrProcessingDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())
	ocrTextLength.WithLabelValues("single").Observe(float64(len(result.Text)))
	if result.Engine != "" {
		ocrEngineUsed.WithLabelValues(result.Engine).Inc()
	}
	if result.Cached {
		cacheOperationsTotal.WithLabelValues("hit").Inc()
	} else {
		cacheOperationsTotal.WithLabelValues("miss").Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

// cacheStatsHandler reports cache counters.
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, ok := s.pipeline.CacheStats(r.Context())
	response := CacheStatsResponse{Enabled: ok}
	if ok {
		response.Stats = &stats
	}
	writeJSON(w, http.StatusOK, response)
}

// cacheClearHandler drops all cached results.
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.pipeline.ClearCache(r.Context()); err != nil {
		s.writeError(w, apierr.Wrap("server.cacheClear", apierr.CodeInternalError,
			"Failed to clear cache", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Cache cleared"})
}

// formOverhead covers multipart boundaries and field encoding beyond
// the raw file bytes.
const formOverhead = 64 * 1024

// formError maps a multipart parse failure to a stable code. A body
// that trips the MaxBytesReader cap is a size rejection, not a
// malformed form.
func formError(op string, err error, limit int64) *apierr.Error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierr.Wrap(op, apierr.CodeFileTooLarge,
			fmt.Sprintf("File too large. Maximum size is %dMB", limit/(1024*1024)), err)
	}
	return apierr.Wrap(op, apierr.CodeInvalidImage, "Failed to parse form data", err)
}

// parseOptions reads the processing flags from form values or query
// parameters. Everything defaults to on; only an explicit false/0/no
// turns a flag off.
func parseOptions(r *http.Request) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.IncludeMetadata = boolParam(r, "include_metadata", true)
	opts.IncludeEntities = boolParam(r, "include_entities", true)
	opts.UseCache = boolParam(r, "use_cache", true)
	return opts
}

func boolParam(r *http.Request, name string, def bool) bool {
	value := r.FormValue(name)
	if value == "" {
		value = r.URL.Query().Get(name)
	}
	switch value {
	case "false", "0", "no":
		return false
	case "true", "1", "yes":
		return true
	default:
		return def
	}
}

// statusFor maps an error code to its HTTP status. Missing file is a
// semantic failure of an otherwise well-formed request, hence 422;
// every other client error in the validation family is a plain 400.
func statusFor(code apierr.Code) int {
	switch {
	case code == apierr.CodeMissingFile:
		return http.StatusUnprocessableEntity
	case apierr.IsValidation(code):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders any pipeline error in the documented error shape.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apierr.CodeOf(err)
	response := ErrorResponse{
		Error: ErrorBody{
			Code:    string(code),
			Message: apierr.MessageOf(err),
		},
	}
	writeJSON(w, statusFor(code), response)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
