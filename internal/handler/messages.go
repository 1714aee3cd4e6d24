package handler

import (
	"log/slog"
	"net/http"

	"github.com/wishwall/wishwall/internal/auth"
	"github.com/wishwall/wishwall/internal/handler/dto"
	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/service"
)

// MessageHandler serves the public wish endpoints and PATCH moderation.
type MessageHandler struct {
	svc    *service.WishService
	logger *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *service.WishService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

// Submit handles POST /api/messages.
func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitWishRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wish, err := h.svc.Submit(r.Context(), service.SubmitInput{
		Name:    req.Name,
		Message: req.Message,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.Response{
		Success: true,
		Message: "Birthday wish submitted successfully!",
		Data:    wish,
	})
}

// List handles GET /api/messages. includeUnapproved=true is admin only.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		wishes []*model.Wish
		err    error
	)

	if r.URL.Query().Get("includeUnapproved") == "true" {
		if auth.UserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Admin authentication required")
			return
		}
		wishes, err = h.svc.ListAll(r.Context())
	} else {
		wishes, err = h.svc.ListPublic(r.Context())
	}

	if err != nil {
		h.logger.Error("list wishes failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.Response{
			Error: "Failed to load wishes",
			Code:  "STORE_READ_FAILED",
			Data:  []*model.Wish{},
		})
		return
	}

	if wishes == nil {
		wishes = []*model.Wish{}
	}
	count := len(wishes)
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Data:    wishes,
		Count:   &count,
	})
}

// Moderate handles PATCH /api/messages.
func (h *MessageHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req dto.ModerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wish, err := h.svc.Moderate(r.Context(), service.ModerateInput{
		ID:     req.TargetID(),
		Action: req.Action,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("wish_moderated",
		"id", req.TargetID(),
		"action", req.Action,
		"admin_id", auth.UserIDFromContext(r.Context()),
	)

	resp := dto.Response{
		Success: true,
		Message: "Message " + req.Action + "d successfully",
	}
	if wish != nil {
		resp.Data = wish
	}
	writeJSON(w, http.StatusOK, resp)
}
