package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pictext/pictext/internal/apierr"
	"github.com/pictext/pictext/internal/pipeline"
	"github.com/pictext/pictext/internal/validate"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketOCRRequest represents an extraction request via WebSocket.
// Image payloads are base64-encoded by the JSON codec.
type WebSocketOCRRequest struct {
	Type    string                 `json:"type"` // "extract" or "batch"
	Files   []WebSocketFile        `json:"files,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// WebSocketFile carries one uploaded image in a WebSocket request.
type WebSocketFile struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketOCRResponse represents an extraction response via WebSocket.
type WebSocketOCRResponse struct {
	Type      string      `json:"type"`
	Status    string      `json:"status"` // "processing", "completed", "error"
	Progress  float64     `json:"progress,omitempty"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorType string      `json:"error_type,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ocrWebSocketHandler handles WebSocket connections for real-time OCR.
func (s *Server) ocrWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage processes a WebSocket message.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketOCRRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	// Generate a request ID for tracking
	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	s.sendWebSocketResponse(conn, WebSocketOCRResponse{
		Type:      "ocr_response",
		Status:    "processing",
		Progress:  0.0,
		RequestID: requestID,
	})

	switch req.Type {
	case "extract":
		s.processWebSocketExtract(conn, req, requestID)
	case "batch":
		s.processWebSocketBatch(conn, req, requestID)
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

// processWebSocketExtract processes a single-image request via WebSocket.
func (s *Server) processWebSocketExtract(conn *websocket.Conn, req WebSocketOCRRequest, requestID string) {
	if len(req.Files) == 0 || len(req.Files[0].Content) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}
	file := req.Files[0]

	start := time.Now()
	result, err := s.pipeline.ExtractText(context.Background(), file.Content, file.Filename, websocketOptions(req.Options))
	duration := time.Since(start)

	if err != nil {
		ocrRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, string(apierr.CodeOf(err)), apierr.MessageOf(err))
		return
	}

	ocrRequestsTotal.WithLabelValues("websocket", "success").Inc()
	ocrProcessingDuration.WithLabelValues("websocket").Observe(duration.Seconds())
	ocrTextLength.WithLabelValues("websocket").Observe(float64(len(result.Text)))
	if result.Engine != "" {
		ocrEngineUsed.WithLabelValues(result.Engine).Inc()
	}

	s.sendWebSocketResponse(conn, WebSocketOCRResponse{
		Type:      "ocr_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    result,
		RequestID: requestID,
	})
}

// processWebSocketBatch processes a multi-image request via WebSocket,
// streaming a progress update as each file completes.
func (s *Server) processWebSocketBatch(conn *websocket.Conn, req WebSocketOCRRequest, requestID string) {
	if len(req.Files) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No files provided")
		return
	}
	if len(req.Files) > s.maxBatchSize {
		s.sendWebSocketError(conn, string(apierr.CodeTooManyFiles),
			fmt.Sprintf("Too many files. Maximum is %d per batch", s.maxBatchSize))
		return
	}

	opts := websocketOptions(req.Options)
	start := time.Now()
	batch := &pipeline.BatchResult{TotalFiles: len(req.Files)}

	// Files run sequentially here so each completion maps to a progress
	// frame in order; the HTTP batch endpoint is the concurrent path.
	for i, file := range req.Files {
		item := pipeline.BatchItem{Filename: validate.SanitizeFilename(file.Filename)}
		result, err := s.pipeline.ExtractText(context.Background(), file.Content, file.Filename, opts)
		if err != nil {
			item.Error = &pipeline.ItemError{Code: string(apierr.CodeOf(err)), Message: apierr.MessageOf(err)}
			batch.Failed++
		} else {
			item.Success = true
			item.Result = result
			batch.Successful++
		}
		batch.Results = append(batch.Results, item)

		s.sendWebSocketResponse(conn, WebSocketOCRResponse{
			Type:      "ocr_response",
			Status:    "processing",
			Progress:  float64(i+1) / float64(len(req.Files)),
			RequestID: requestID,
		})
	}
	batch.Success = batch.Failed == 0
	batch.TotalProcessingTimeMs = float64(time.Since(start).Milliseconds())

	status := "success"
	if batch.Failed > 0 {
		status = "partial"
	}
	ocrRequestsTotal.WithLabelValues("websocket_batch", status).Inc()
	ocrProcessingDuration.WithLabelValues("websocket_batch").Observe(time.Since(start).Seconds())

	s.sendWebSocketResponse(conn, WebSocketOCRResponse{
		Type:      "ocr_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    batch,
		RequestID: requestID,
	})
}

// websocketOptions maps the request option bag onto pipeline options.
func websocketOptions(options map[string]interface{}) pipeline.Options {
	opts := pipeline.DefaultOptions()
	if options == nil {
		return opts
	}
	if val, ok := options["include_metadata"].(bool); ok {
		opts.IncludeMetadata = val
	}
	if val, ok := options["include_entities"].(bool); ok {
		opts.IncludeEntities = val
	}
	if val, ok := options["use_cache"].(bool); ok {
		opts.UseCache = val
	}
	return opts
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketOCRResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	response := WebSocketOCRResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	}

	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket error response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket error message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
