// Package statestore persists the application's singleton state blobs
// (admin session, countdown, analytics) under versioned named keys.
//
// Each owner saves a model type: model.CountdownConfig, model.AdminSession
// or model.AnalyticsSnapshot. Derived values such as the countdown state and
// remaining time are recomputed after Load. The admin blob keeps the session
// token so a restart does not end the admin's session.
package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Key identifies a persisted blob. Bumping Version orphans older blobs.
type Key struct {
	Name    string
	Version int
}

// String returns the storage key, e.g. "state:admin-auth:v1".
func (k Key) String() string {
	return fmt.Sprintf("state:%s:v%d", k.Name, k.Version)
}

// Blob keys used by the application.
var (
	AdminAuthKey = Key{Name: "admin-auth", Version: 1}
	CountdownKey = Key{Name: "birthday-site", Version: 1}
	AnalyticsKey = Key{Name: "birthday-analytics", Version: 1}
)

// Store loads and saves JSON-encoded blobs.
type Store interface {
	// Load decodes the blob into dst. It reports false when no blob exists.
	Load(ctx context.Context, key Key, dst any) (bool, error)
	// Save replaces the blob with the encoding of v.
	Save(ctx context.Context, key Key, v any) error
}

// Memory is a process-local Store for development and tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, key Key, dst any) (bool, error) {
	m.mu.RLock()
	data, ok := m.blobs[key.String()]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.blobs[key.String()] = data
	m.mu.Unlock()
	return nil
}

// Raw returns the stored bytes for key. Intended for tests.
func (m *Memory) Raw(key Key) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key.String()]
	return data, ok
}
