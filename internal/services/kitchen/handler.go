package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/logger"
)

// Handler handles HTTP requests for the kitchen service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new kitchen handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// MarkOrderReady handles POST /orders/{ref}/ready requests: the operator's
// single "Order Ready" affordance per order card.
func (h *Handler) MarkOrderReady(w http.ResponseWriter, r *http.Request, orderRef, requestID string) {
	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	changedBy := r.Header.Get("X-Operator")
	if changedBy == "" {
		changedBy = "kitchen"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.service.MarkNextItemReady(ctx, orderRef, changedBy, requestID)
	if err != nil {
		h.writeServiceError(w, err, orderRef, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// GetOrder handles GET /orders/{ref} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, orderRef, requestID string) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderRef)
	if err != nil {
		h.writeServiceError(w, err, orderRef, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(order); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// GetOrderHistory handles GET /orders/{ref}/history requests
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request, orderRef, requestID string) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	history, err := h.service.GetOrderHistory(r.Context(), orderRef)
	if err != nil {
		h.writeServiceError(w, err, orderRef, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(history); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request, requestID string) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "kitchen-service",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, orderRef, requestID string) {
	switch {
	case errors.Is(err, ErrInvalidOrderRef):
		h.writeErrorResponse(w, http.StatusBadRequest, "Order reference is required", requestID)
	case errors.Is(err, ErrOrderNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
	case errors.Is(err, ErrDuplicateRequest):
		h.writeErrorResponse(w, http.StatusConflict, "Action already submitted", requestID)
	case errors.Is(err, database.ErrVersionConflict):
		h.writeErrorResponse(w, http.StatusConflict, "Order was modified concurrently, retry", requestID)
	default:
		h.logger.Error("kitchen_action_failed", "Kitchen action failed", requestID, err, map[string]interface{}{
			"order_ref": orderRef,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Update failed", requestID)
	}
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

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders/", h.withLogging(h.routeOrders))
	mux.HandleFunc("/health", h.withLogging(h.HealthCheck))

	return mux
}

// routeOrders dispatches /orders/{ref}[/ready|/history] requests
func (h *Handler) routeOrders(w http.ResponseWriter, r *http.Request, requestID string) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/ready"):
		h.MarkOrderReady(w, r, strings.TrimSuffix(path, "/ready"), requestID)
	case strings.HasSuffix(path, "/history"):
		h.GetOrderHistory(w, r, strings.TrimSuffix(path, "/history"), requestID)
	case path != "" && !strings.Contains(path, "/"):
		h.GetOrder(w, r, path, requestID)
	default:
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order reference", requestID)
	}
}

// withLogging adds request logging middleware. The request ID minted here is
// handed to the wrapped handler so every log line for one request correlates.
func (h *Handler) withLogging(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}

		next(rw, r, requestID)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
