package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wishwall/wishwall/internal/analytics"
	"github.com/wishwall/wishwall/internal/handler/dto"
	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/service"
	"github.com/wishwall/wishwall/internal/session"
)

// AdminHandler serves login, session and dashboard endpoints.
type AdminHandler struct {
	gate    *session.Gate
	svc     *service.WishService
	tracker *analytics.Tracker
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(gate *session.Gate, svc *service.WishService, tracker *analytics.Tracker, recorder metrics.Recorder, logger *slog.Logger) *AdminHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AdminHandler{
		gate:    gate,
		svc:     svc,
		tracker: tracker,
		metrics: recorder,
		logger:  logger,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	grant, err := h.gate.Login(r.Context(), email, req.Password)
	if err != nil {
		var limited *session.RateLimitedError
		if errors.As(err, &limited) {
			h.metrics.IncAdminLogin(metrics.LoginRateLimited)
		} else {
			h.metrics.IncAdminLogin(metrics.LoginFailed)
		}
		handleServiceError(w, h.logger, err)
		return
	}

	h.metrics.IncAdminLogin(metrics.LoginSuccess)
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Logged in",
		Data: dto.LoginResponse{
			Token:     grant.Token,
			User:      grant.User,
			ExpiresAt: grant.ExpiresAt,
		},
	})
}

// Logout handles POST /api/admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/admin/session. It revalidates the bearer token
// and always answers 200 with the authenticated flag.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	user, err := h.gate.Authorize(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusOK, dto.Response{
			Success: true,
			Data:    dto.SessionResponse{Authenticated: false},
		})
		return
	}

	st := h.gate.Status()
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data: dto.SessionResponse{
			Authenticated: true,
			User:          user,
			ExpiresAt:     st.ExpiresAt,
		},
	})
}

// ExtendSession handles POST /api/admin/session/extend.
func (h *AdminHandler) ExtendSession(w http.ResponseWriter, r *http.Request) {
	expiry, ok := h.gate.ExtendSession(r.Context())
	if !ok {
		handleServiceError(w, h.logger, session.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    dto.ExtendSessionResponse{ExpiresAt: expiry},
	})
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.svc.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if wishes == nil {
		wishes = []*model.Wish{}
	}

	resp := dto.DashboardResponse{
		Wishes:    wishes,
		Analytics: h.tracker.Summary(),
	}
	for _, wish := range wishes {
		if wish.Approved {
			resp.Approved++
		} else {
			resp.Pending++
		}
	}

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Data: resp})
}

// bearerToken returns the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
