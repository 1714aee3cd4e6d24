package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wishwall/wishwall/internal/statestore"
)

// Load reads a persisted state blob. Implements statestore.Store.
// Blobs never expire; they are only replaced or reset by their owner.
func (c *Cache) Load(ctx context.Context, key statestore.Key, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save writes a persisted state blob. Implements statestore.Store.
func (c *Cache) Save(ctx context.Context, key statestore.Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key.String(), data, 0).Err()
}

var _ statestore.Store = (*Cache)(nil)
