package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wishwall/wishwall/internal/model"
)

// LocalConfig configures the built-in single-admin identity provider.
type LocalConfig struct {
	Email        string
	Name         string
	PasswordHash string
	Secret       []byte
	SessionTTL   time.Duration
}

// LocalProvider authenticates the one configured administrator.
// Sessions are signed tokens; deleted sessions are tracked by a Revoker.
type LocalProvider struct {
	email        string
	name         string
	passwordHash string
	ttl          time.Duration
	createdAt    time.Time

	signer  *TokenSigner
	revoker Revoker
	now     func() time.Time
	logger  *slog.Logger
}

// NewLocalProvider creates a provider. A nil revoker keeps revocations in memory.
func NewLocalProvider(cfg LocalConfig, revoker Revoker, now func() time.Time, logger *slog.Logger) *LocalProvider {
	if now == nil {
		now = time.Now
	}
	if revoker == nil {
		revoker = NewMemoryRevoker(now)
	}
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "Admin"
	}
	return &LocalProvider{
		email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		name:         name,
		passwordHash: cfg.PasswordHash,
		ttl:          cfg.SessionTTL,
		createdAt:    now().UTC(),
		signer:       NewTokenSigner(cfg.Secret, now),
		revoker:      revoker,
		now:          now,
		logger:       logger.With("component", "auth"),
	}
}

// CreateEmailPasswordSession verifies the credentials and issues a session.
func (p *LocalProvider) CreateEmailPasswordSession(ctx context.Context, email, password string) (*Session, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(normalized), []byte(p.email)) == 1

	// Always run the hash so timing does not reveal whether the email matched.
	match, err := VerifyPassword(password, p.passwordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !emailOK || !match {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := p.signer.Issue(p.userID(), p.email, p.ttl)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// DeleteSession revokes a session. Unknown or expired tokens report
// ErrSessionNotFound.
func (p *LocalProvider) DeleteSession(ctx context.Context, token string) error {
	claims, err := p.signer.Parse(token)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(p.now())
	if err := p.revoker.RevokeSession(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CurrentUser resolves the admin behind a live session token.
func (p *LocalProvider) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := p.signer.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := p.revoker.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		p.logger.Warn("revocation lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if revoked || claims.Subject != p.userID() {
		return nil, ErrSessionNotFound
	}

	return &model.User{
		ID:        p.userID(),
		Email:     p.email,
		Name:      p.name,
		CreatedAt: p.createdAt,
	}, nil
}

func (p *LocalProvider) userID() string {
	return "admin:" + p.email
}

// MemoryRevoker keeps revoked session ids in process memory.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty in-memory revocation list.
func NewMemoryRevoker(now func() time.Time) *MemoryRevoker {
	if now == nil {
		now = time.Now
	}
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: now}
}

// RevokeSession implements Revoker.
func (m *MemoryRevoker) RevokeSession(_ context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	m.revoked[sessionID] = now.Add(ttl)
	return nil
}

// IsSessionRevoked implements Revoker.
func (m *MemoryRevoker) IsSessionRevoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[sessionID]
	return ok && m.now().Before(until), nil
}

var (
	_ Provider = (*LocalProvider)(nil)
	_ Revoker  = (*MemoryRevoker)(nil)
)
