package messages

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wishwall/wishwall/internal/model"
)

// MemoryDocuments is a process-local Documents backend.
type MemoryDocuments struct {
	mu   sync.RWMutex
	docs map[string]*model.Wish
	now  func() time.Time
	fail error
}

// NewMemoryDocuments returns an empty backend.
func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{
		docs: make(map[string]*model.Wish),
		now:  time.Now,
	}
}

// SetClock overrides the timestamp source.
func (m *MemoryDocuments) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MemoryDocuments) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// CreateDocument implements Documents.
func (m *MemoryDocuments) CreateDocument(_ context.Context, name, message string) (*model.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return nil, m.fail
	}

	now := m.now().UTC()
	wish := &model.Wish{
		ID:          ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Name:        name,
		Message:     message,
		SubmittedAt: now,
	}
	m.docs[wish.ID] = wish
	return wish.Clone(), nil
}

// ListDocuments implements Documents.
func (m *MemoryDocuments) ListDocuments(_ context.Context, q Query) ([]*model.Wish, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.fail != nil {
		return nil, m.fail
	}

	out := make([]*model.Wish, 0, len(m.docs))
	for _, w := range m.docs {
		if q.Approved != nil && w.Approved != *q.Approved {
			continue
		}
		out = append(out, w.Clone())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// UpdateDocument implements Documents.
func (m *MemoryDocuments) UpdateDocument(_ context.Context, id string, patch Patch) (*model.Wish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return nil, m.fail
	}

	w, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Approved != nil {
		w.Approved = *patch.Approved
	}
	return w.Clone(), nil
}

// DeleteDocument implements Documents.
func (m *MemoryDocuments) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return m.fail
	}

	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

var _ Documents = (*MemoryDocuments)(nil)
