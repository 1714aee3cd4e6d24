// Package messages talks to the document store that holds wishes.
//
// The store is the single source of truth. Backend failures surface as
// RemoteReadError or RemoteWriteError; a missing id surfaces as ErrNotFound.
package messages

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wishwall/wishwall/internal/model"
)

// DefaultLimit caps every listing.
const DefaultLimit = 100

// Query selects wishes from a Documents backend.
// Results are always ordered by submission time, newest first.
type Query struct {
	Approved *bool
	Limit    int
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Approved *bool
}

// Documents is the primitive interface a document database exposes.
// Implementations assign ids and submission timestamps on create and
// return ErrNotFound for unknown ids.
type Documents interface {
	CreateDocument(ctx context.Context, name, message string) (*model.Wish, error)
	ListDocuments(ctx context.Context, q Query) ([]*model.Wish, error)
	UpdateDocument(ctx context.Context, id string, patch Patch) (*model.Wish, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Adapter exposes wish operations on top of a Documents backend.
type Adapter struct {
	docs   Documents
	limit  int
	logger *slog.Logger
}

// New creates an Adapter. A non-positive limit falls back to DefaultLimit.
func New(docs Documents, limit int, logger *slog.Logger) *Adapter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		docs:   docs,
		limit:  limit,
		logger: logger.With("component", "messages"),
	}
}

// Create stores a new unapproved wish.
func (a *Adapter) Create(ctx context.Context, name, message string) (*model.Wish, error) {
	wish, err := a.docs.CreateDocument(ctx, name, message)
	if err != nil {
		a.logger.Error("create wish failed", "error", err)
		return nil, &RemoteWriteError{Op: "create", Err: err}
	}
	return wish, nil
}

// ListApproved returns approved wishes only.
func (a *Adapter) ListApproved(ctx context.Context) ([]*model.Wish, error) {
	approved := true
	return a.list(ctx, "list approved", Query{Approved: &approved, Limit: a.limit})
}

// ListAll returns every wish regardless of approval. Callers must restrict
// this to administrators.
func (a *Adapter) ListAll(ctx context.Context) ([]*model.Wish, error) {
	return a.list(ctx, "list all", Query{Limit: a.limit})
}

func (a *Adapter) list(ctx context.Context, op string, q Query) ([]*model.Wish, error) {
	wishes, err := a.docs.ListDocuments(ctx, q)
	if err != nil {
		a.logger.Error("list wishes failed", "op", op, "error", err)
		return nil, &RemoteReadError{Op: op, Err: err}
	}
	if wishes == nil {
		wishes = []*model.Wish{}
	}
	return wishes, nil
}

// Approve marks a wish approved. Approving an approved wish succeeds.
func (a *Adapter) Approve(ctx context.Context, id string) (*model.Wish, error) {
	approved := true
	wish, err := a.docs.UpdateDocument(ctx, id, Patch{Approved: &approved})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		a.logger.Error("approve wish failed", "id", id, "error", err)
		return nil, &RemoteWriteError{Op: "approve", Err: err}
	}
	return wish, nil
}

// Delete permanently removes a wish.
func (a *Adapter) Delete(ctx context.Context, id string) error {
	if err := a.docs.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		a.logger.Error("delete wish failed", "id", id, "error", err)
		return &RemoteWriteError{Op: "delete", Err: err}
	}
	return nil
}
