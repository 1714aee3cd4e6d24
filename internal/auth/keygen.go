package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// SecretLen is the byte length of a generated session secret.
const SecretLen = 32

// ErrEmptyPassword indicates an empty admin password was supplied.
var ErrEmptyPassword = errors.New("password must not be empty")

// AdminCredentials holds freshly generated configuration values.
type AdminCredentials struct {
	PasswordHash  string // ADMIN_PASSWORD_HASH
	SessionSecret string // SESSION_SECRET
}

// GenerateAdminCredentials hashes the password and generates a session secret.
func GenerateAdminCredentials(password string) (*AdminCredentials, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return nil, err
	}

	return &AdminCredentials{PasswordHash: hash, SessionSecret: secret}, nil
}

// GenerateSecret returns SecretLen random bytes, hex encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, SecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
