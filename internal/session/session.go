// Package session guards admin access: login rate limiting, session expiry
// and revalidation against the identity provider.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wishwall/wishwall/internal/auth"
	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/statestore"
)

// Gate errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// RateLimitedError is returned when too many logins failed recently.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

// Config tunes the gate.
type Config struct {
	SessionTTL   time.Duration
	MaxAttempts  int
	Window       time.Duration
	CheckRetries int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:   24 * time.Hour,
		MaxAttempts:  5,
		Window:       time.Hour,
		CheckRetries: 1,
	}
}

// Grant is the result of a successful login.
type Grant struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Gate owns the single admin session. All methods are safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	state    model.AdminSession
	provider auth.Provider
	store    statestore.Store
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a gate and restores any persisted session state.
func New(ctx context.Context, provider auth.Provider, store statestore.Store, cfg Config, now func() time.Time, logger *slog.Logger) *Gate {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		provider: provider,
		store:    store,
		cfg:      cfg,
		now:      now,
		logger:   logger.With("component", "session"),
	}

	found, err := store.Load(ctx, statestore.AdminAuthKey, &g.state)
	if err != nil {
		g.logger.Warn("discarding unreadable admin session state", "error", err)
		g.state = model.AdminSession{}
	} else if found {
		g.logger.Debug("restored admin session state", "authenticated", g.state.IsAuthenticated)
	}

	return g
}

// Login authenticates the admin and starts a fresh session. A successful
// login replaces and revokes the previous session. A failed one leaves it
// untouched.
func (g *Gate) Login(ctx context.Context, email, password string) (*Grant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	s := &g.state

	if s.LoginAttempts >= g.cfg.MaxAttempts && s.LastLoginAttemptAt != nil {
		if elapsed := now.Sub(*s.LastLoginAttemptAt); elapsed < g.cfg.Window {
			return nil, &RateLimitedError{RetryAfter: g.cfg.Window - elapsed}
		}
	}

	sess, err := g.provider.CreateEmailPasswordSession(ctx, email, password)
	var user *model.User
	if err == nil {
		if user, err = g.provider.CurrentUser(ctx, sess.Token); err != nil {
			g.deleteRemote(ctx, sess.Token)
		}
	}
	if err != nil {
		// Only the attempt counters change; the live session stays.
		s.LoginAttempts++
		s.LastLoginAttemptAt = &now
		g.persist(ctx)

		g.logger.Warn("admin login failed", "attempts", s.LoginAttempts, "error", err)
		return nil, ErrInvalidCredentials
	}

	if prev := s.SessionToken; prev != "" && prev != sess.Token {
		g.deleteRemote(ctx, prev)
	}

	expiry := now.Add(g.cfg.SessionTTL)
	s.IsAuthenticated = true
	s.User = user
	s.SessionToken = sess.Token
	s.SessionExpiry = &expiry
	s.LoginAttempts = 0
	s.LastLoginAttemptAt = nil
	g.persist(ctx)

	g.logger.Info("admin logged in", "user_id", user.ID)
	return &Grant{User: cloneUser(user), Token: sess.Token, ExpiresAt: expiry}, nil
}

func (g *Gate) deleteRemote(ctx context.Context, token string) {
	if err := g.provider.DeleteSession(ctx, token); err != nil {
		g.logger.Debug("session cleanup failed", "error", err)
	}
}

// Logout ends the session. Local state is always cleared even when the
// identity provider cannot be reached.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logoutLocked(ctx)
}

func (g *Gate) logoutLocked(ctx context.Context) {
	if token := g.state.SessionToken; token != "" {
		if err := g.provider.DeleteSession(ctx, token); err != nil {
			g.logger.Warn("remote session delete failed", "error", err)
		}
	}
	g.state.ClearAuth()
	g.persist(ctx)
}

// CheckSession revalidates the session. It logs out when the local expiry
// has passed and slides the expiry forward when the provider confirms it.
func (g *Gate) CheckSession(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.checkLocked(ctx)
}

func (g *Gate) checkLocked(ctx context.Context) bool {
	s := &g.state
	now := g.now()

	if s.SessionExpiry != nil && now.After(*s.SessionExpiry) {
		g.logger.Info("admin session expired")
		g.logoutLocked(ctx)
		return false
	}
	if !s.IsAuthenticated || s.SessionToken == "" {
		return false
	}

	var (
		user *model.User
		err  error
	)
	for attempt := 0; attempt <= g.cfg.CheckRetries; attempt++ {
		user, err = g.provider.CurrentUser(ctx, s.SessionToken)
		if err == nil || !errors.Is(err, auth.ErrUnavailable) {
			break
		}
		g.logger.Debug("session check retry", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		g.logger.Info("admin session rejected", "error", err)
		s.ClearAuth()
		g.persist(ctx)
		return false
	}

	expiry := now.Add(g.cfg.SessionTTL)
	s.User = user
	s.SessionExpiry = &expiry
	g.persist(ctx)
	return true
}

// ExtendSession pushes the expiry forward without contacting the provider.
// It reports false when no session is active.
func (g *Gate) ExtendSession(ctx context.Context) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsAuthenticated {
		return time.Time{}, false
	}

	expiry := g.now().Add(g.cfg.SessionTTL)
	g.state.SessionExpiry = &expiry
	g.persist(ctx)
	return expiry, true
}

// Authorize checks that token is the current session token and that the
// session is still valid.
func (g *Gate) Authorize(ctx context.Context, token string) (*model.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if token == "" || !g.state.IsAuthenticated {
		return nil, ErrNotAuthenticated
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(g.state.SessionToken)) != 1 {
		return nil, ErrNotAuthenticated
	}
	if !g.checkLocked(ctx) {
		return nil, ErrNotAuthenticated
	}
	return cloneUser(g.state.User), nil
}

// Status is a read-only view of the session.
type Status struct {
	Authenticated bool
	User          *model.User
	ExpiresAt     *time.Time
	LoginAttempts int
}

// Status returns the current session view without revalidating it.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := Status{
		Authenticated: g.state.IsAuthenticated,
		User:          cloneUser(g.state.User),
		LoginAttempts: g.state.LoginAttempts,
	}
	if g.state.SessionExpiry != nil {
		exp := *g.state.SessionExpiry
		st.ExpiresAt = &exp
	}
	return st
}

// persist writes the state blob. Must hold g.mu.
func (g *Gate) persist(ctx context.Context) {
	if err := g.store.Save(ctx, statestore.AdminAuthKey, g.state); err != nil {
		g.logger.Error("persist admin session failed", "error", err)
	}
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
