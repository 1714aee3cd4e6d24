package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// revokedSessionPrefix is the Redis key prefix for revoked session ids.
	revokedSessionPrefix = "auth:revoked:"
	// minRevocationTTL keeps a revocation alive across small clock skews.
	minRevocationTTL = time.Second
)

// RevokeSession marks a session id as revoked until ttl elapses.
// The ttl should be the remaining lifetime of the token.
func (c *Cache) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	if err := c.client.Set(ctx, revokedSessionPrefix+sessionID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether a session id has been revoked.
func (c *Cache) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	err := c.client.Get(ctx, revokedSessionPrefix+sessionID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return true, nil
}
