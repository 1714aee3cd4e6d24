package middleware

import (
	"context"
	"net/http"

	"github.com/oklog/ulid/v2"
)

// VisitorCookieName holds the per-browser-session visitor id.
const VisitorCookieName = "birthday-session-id"

const visitorIDKey contextKey = "visitor_id"

// VisitorTracker records a visitor id. Implemented by analytics.Tracker.
type VisitorTracker interface {
	TrackVisitor(ctx context.Context, sessionID string) bool
}

// VisitorSession reuses or issues the visitor session cookie, records the
// visitor and exposes the id through VisitorIDFromContext. The cookie has
// no expiry so it lives exactly as long as the browser session.
func VisitorSession(tracker VisitorTracker, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := visitorIDFromCookie(r)
			if id == "" {
				id = ulid.Make().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if tracker != nil {
				tracker.TrackVisitor(r.Context(), id)
			}

			ctx := context.WithValue(r.Context(), visitorIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// VisitorIDFromContext returns the visitor id set by VisitorSession.
func VisitorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorIDKey).(string)
	return id
}

func visitorIDFromCookie(r *http.Request) string {
	c, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	id, err := ulid.ParseStrict(c.Value)
	if err != nil {
		return ""
	}
	return id.String()
}
