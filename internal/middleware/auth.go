package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wishwall/wishwall/internal/auth"
	"github.com/wishwall/wishwall/internal/model"
)

// Authorizer validates an admin bearer token. Implemented by session.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*model.User, error)
}

// RequireAdmin rejects requests that do not carry the current admin
// session token and injects the admin user into the request context.
func RequireAdmin(gate Authorizer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			user, err := gate.Authorize(r.Context(), token)
			if err != nil {
				logger.Warn("authentication failed",
					slog.String("reason", "invalid_session"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentifyAdmin attaches the admin user when a valid token is present and
// passes every request through.
func IdentifyAdmin(gate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractBearerToken(r); token != "" {
				if user, err := gate.Authorize(r.Context(), token); err == nil {
					r = r.WithContext(auth.ContextWithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Admin authentication required")
}
