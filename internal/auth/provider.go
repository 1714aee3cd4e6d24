package auth

import (
	"context"
	"errors"
	"time"

	"github.com/wishwall/wishwall/internal/model"
)

// Provider errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	// ErrUnavailable marks a transient backend failure. Callers may retry.
	ErrUnavailable = errors.New("identity service unavailable")
)

// Session is an issued identity session.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Provider is the identity service the admin gate talks to.
type Provider interface {
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// Revoker records revoked session ids until they would have expired anyway.
type Revoker interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}
