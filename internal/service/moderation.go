package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wishwall/wishwall/internal/model"
)

// Moderation is the admin's cached view of all wishes. After every
// mutation the cache is patched and then refetched in full from the store,
// so concurrent admins converge on the store's state.
type Moderation struct {
	mu      sync.Mutex
	store   WishStore
	wishes  []*model.Wish
	lastErr error
	logger  *slog.Logger
}

// NewModeration creates an empty cache over store.
func NewModeration(store WishStore, logger *slog.Logger) *Moderation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Moderation{store: store, logger: logger}
}

// Refresh replaces the cache with the store's full list.
func (m *Moderation) Refresh(ctx context.Context) ([]*model.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refetchLocked(ctx); err != nil {
		return nil, err
	}
	return cloneWishes(m.wishes), nil
}

// Wishes returns the cached list and the error of the last failed refetch.
func (m *Moderation) Wishes() ([]*model.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneWishes(m.wishes), m.lastErr
}

// Approve approves id in the store, then patches and refetches the cache.
func (m *Moderation) Approve(ctx context.Context, id string) (*model.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wish, err := m.store.Approve(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, w := range m.wishes {
		if w.ID == id {
			w.Approved = true
		}
	}
	m.refetchAfterMutation(ctx)
	return wish, nil
}

// Delete removes id from the store, then patches and refetches the cache.
func (m *Moderation) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	kept := m.wishes[:0]
	for _, w := range m.wishes {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	m.wishes = kept
	m.refetchAfterMutation(ctx)
	return nil
}

// refetchAfterMutation keeps the patched cache when the refetch fails.
func (m *Moderation) refetchAfterMutation(ctx context.Context) {
	if err := m.refetchLocked(ctx); err != nil {
		m.logger.Warn("refetch after moderation failed, keeping patched list", "error", err)
	}
}

func (m *Moderation) refetchLocked(ctx context.Context) error {
	wishes, err := m.store.ListAll(ctx)
	if err != nil {
		m.lastErr = err
		return err
	}
	m.wishes = wishes
	m.lastErr = nil
	return nil
}

func cloneWishes(in []*model.Wish) []*model.Wish {
	out := make([]*model.Wish, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}
