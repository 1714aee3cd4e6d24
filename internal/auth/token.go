package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenIssuer names the issuer claim on every session token.
const tokenIssuer = "wishwall"

// Claims are the JWT claims carried by an admin session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenSigner issues and parses HS256 session tokens.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner creates a signer for the given secret.
func NewTokenSigner(secret []byte, now func() time.Time) *TokenSigner {
	if now == nil {
		now = time.Now
	}
	return &TokenSigner{secret: secret, now: now}
}

// Issue signs a token for subject valid for ttl. The jti is a fresh UUID.
func (s *TokenSigner) Issue(subject, email string, ttl time.Duration) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates the signature and expiry of a token.
// Any failure is reported as ErrSessionNotFound.
func (s *TokenSigner) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrSessionNotFound
	}
	return claims, nil
}
