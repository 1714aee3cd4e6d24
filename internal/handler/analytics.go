package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wishwall/wishwall/internal/analytics"
	"github.com/wishwall/wishwall/internal/handler/dto"
	"github.com/wishwall/wishwall/internal/model"
)

// AnalyticsHandler records page views and serves the admin summary.
type AnalyticsHandler struct {
	tracker *analytics.Tracker
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(tracker *analytics.Tracker) *AnalyticsHandler {
	return &AnalyticsHandler{tracker: tracker}
}

// PageView handles POST /api/analytics/pageview. The visitor itself is
// recorded by the VisitorSession middleware. An empty body counts as a
// home page view.
func (h *AnalyticsHandler) PageView(w http.ResponseWriter, r *http.Request) {
	var req dto.PageViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	page := strings.ToLower(strings.TrimSpace(req.Page))
	switch page {
	case model.PageHome, model.PageWish, model.PageAdmin:
	default:
		page = analytics.PageFromPath(req.Path)
	}

	h.tracker.TrackPageView(r.Context(), page)
	w.WriteHeader(http.StatusAccepted)
}

// Summary handles GET /api/admin/analytics.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    h.tracker.Summary(),
	})
}

// Reset handles POST /api/admin/analytics/reset.
func (h *AnalyticsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.tracker.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
