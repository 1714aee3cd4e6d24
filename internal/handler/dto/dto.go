// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"strings"
	"time"

	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/service"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Data    any                  `json:"data,omitempty"`
	Count   *int                 `json:"count,omitempty"`
	Error   string               `json:"error,omitempty"`
	Code    string               `json:"code,omitempty"`
	Details []service.FieldError `json:"details,omitempty"`
}

// SubmitWishRequest is the body of POST /api/messages.
type SubmitWishRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ModerateRequest is the body of PATCH /api/messages. Older clients send
// messageId instead of id.
type ModerateRequest struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	Action    string `json:"action"`
}

// TargetID returns whichever id field the client filled.
func (r ModerateRequest) TargetID() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.MessageID)
}

// PageViewRequest is the body of POST /api/analytics/pageview.
type PageViewRequest struct {
	Page string `json:"page,omitempty"`
	Path string `json:"path,omitempty"`
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent admin calls.
type LoginResponse struct {
	Token     string      `json:"token"`
	User      *model.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// SessionResponse describes the admin session.
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expiresAt,omitempty"`
}

// ExtendSessionResponse carries the new session expiry.
type ExtendSessionResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// DashboardResponse bundles everything the admin dashboard shows.
type DashboardResponse struct {
	Wishes    []*model.Wish          `json:"wishes"`
	Pending   int                    `json:"pending"`
	Approved  int                    `json:"approved"`
	Analytics model.AnalyticsSummary `json:"analytics"`
}

// TargetDateRequest is the body of PUT /api/admin/countdown.
type TargetDateRequest struct {
	TargetDate string `json:"targetDate"`
}

// MusicResponse reports the music flag after a toggle.
type MusicResponse struct {
	MusicEnabled bool `json:"musicEnabled"`
}

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
