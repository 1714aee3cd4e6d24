// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wishwall/wishwall/internal/countdown"
	"github.com/wishwall/wishwall/internal/handler/dto"
	"github.com/wishwall/wishwall/internal/messages"
	"github.com/wishwall/wishwall/internal/service"
	"github.com/wishwall/wishwall/internal/session"
)

// Handler serves the endpoints that need no dependencies.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Info describes the service.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.ServiceInfo{Name: "wishwall", Version: h.version},
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the failure envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.Response{Error: message, Code: code})
}

// decodeJSON reads the request body into dst. On failure it has already
// written the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *service.ValidationError
		readErr    *messages.RemoteReadError
		writeErr   *messages.RemoteWriteError
		limited    *session.RateLimitedError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, dto.Response{
			Error:   "Invalid data",
			Code:    "VALIDATION_ERROR",
			Details: validation.Fields,
		})
	case errors.Is(err, messages.ErrNotFound):
		writeError(w, http.StatusNotFound, "WISH_NOT_FOUND", "Wish not found")
	case errors.As(err, &readErr):
		logger.Error("store read failed", "op", readErr.Op, "error", readErr.Err)
		writeError(w, http.StatusInternalServerError, "STORE_READ_FAILED", "Failed to load wishes")
	case errors.As(err, &writeErr):
		logger.Error("store write failed", "op", writeErr.Op, "error", writeErr.Err)
		writeError(w, http.StatusInternalServerError, "STORE_WRITE_FAILED", "Failed to save changes")
	case errors.Is(err, session.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.FormatInt(ceilSeconds(limited.RetryAfter), 10))
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts. Please try again later.")
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Admin authentication required")
	case errors.Is(err, countdown.ErrForceUnlockDisabled), errors.Is(err, countdown.ErrResetDisabled):
		writeError(w, http.StatusForbidden, "DEV_TOOLS_DISABLED", "Only available outside production")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func ceilSeconds(d time.Duration) int64 {
	s := int64((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
