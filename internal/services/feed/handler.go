package feed

import (
	"encoding/json"
	"net/http"
	"time"

	"kitchen-ops/internal/logger"
)

// Handler serves the rendered kitchen feed over HTTP
type Handler struct {
	projector *Projector
	logger    *logger.Logger
}

// NewHandler creates a new feed handler
func NewHandler(projector *Projector, log *logger.Logger) *Handler {
	return &Handler{
		projector: projector,
		logger:    log,
	}
}

// GetFeed handles GET /feed requests
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	cards := h.projector.Cards()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(cards); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode feed response", requestID, err, nil)
	}
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "kitchen-feed",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/feed", h.GetFeed)
	mux.HandleFunc("/health", h.HealthCheck)

	return mux
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}
