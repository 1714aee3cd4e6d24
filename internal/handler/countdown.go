package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wishwall/wishwall/internal/config"
	"github.com/wishwall/wishwall/internal/countdown"
	"github.com/wishwall/wishwall/internal/handler/dto"
)

// CountdownHandler exposes the countdown machine.
type CountdownHandler struct {
	machine  *countdown.Machine
	location *time.Location
	logger   *slog.Logger
}

// NewCountdownHandler creates a new CountdownHandler. Target dates without
// a zone are read in loc.
func NewCountdownHandler(machine *countdown.Machine, loc *time.Location, logger *slog.Logger) *CountdownHandler {
	if loc == nil {
		loc = time.Local
	}
	return &CountdownHandler{machine: machine, location: loc, logger: logger}
}

// Get handles GET /api/countdown.
func (h *CountdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    h.machine.Snapshot(r.Context()),
	})
}

// SetTarget handles PUT /api/admin/countdown.
func (h *CountdownHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req dto.TargetDateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	target, err := config.ParseTargetDate(req.TargetDate, h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TARGET_DATE", "targetDate must be an ISO 8601 date or date-time")
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Target date updated",
		Data:    h.machine.SetTargetDate(r.Context(), target),
	})
}

// ToggleMusic handles POST /api/admin/countdown/music.
func (h *CountdownHandler) ToggleMusic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.MusicResponse{MusicEnabled: h.machine.ToggleMusic(r.Context())},
	})
}

// ForceUnlock handles POST /api/admin/countdown/unlock.
func (h *CountdownHandler) ForceUnlock(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.ForceUnlock(r.Context()); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Countdown unlocked",
		Data:    h.machine.Snapshot(r.Context()),
	})
}

// Reset handles POST /api/admin/countdown/reset.
func (h *CountdownHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.ResetState(r.Context()); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Countdown reset",
		Data:    h.machine.Snapshot(r.Context()),
	})
}
