package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/wishwall/wishwall/internal/messages"
	"github.com/wishwall/wishwall/internal/model"
)

const wishColumns = "id, name, message, submitted_at, approved"

// WishDocuments stores wishes in PostgreSQL. Implements messages.Documents.
type WishDocuments struct {
	repo *Repository
}

// NewWishDocuments creates a wish store on top of the repository pool.
func NewWishDocuments(repo *Repository) *WishDocuments {
	return &WishDocuments{repo: repo}
}

// CreateDocument inserts a new unapproved wish. The id and submission
// timestamp are assigned here.
func (d *WishDocuments) CreateDocument(ctx context.Context, name, message string) (*model.Wish, error) {
	query := `
		INSERT INTO wishes (id, name, message)
		VALUES ($1, $2, $3)
		RETURNING ` + wishColumns

	wish, err := scanWish(d.repo.pool.QueryRow(ctx, query, ulid.Make().String(), name, message))
	if err != nil {
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}
	return wish, nil
}

// ListDocuments returns wishes newest first.
func (d *WishDocuments) ListDocuments(ctx context.Context, q messages.Query) ([]*model.Wish, error) {
	var (
		where []string
		args  []any
	)

	if q.Approved != nil {
		args = append(args, *q.Approved)
		where = append(where, fmt.Sprintf("approved = $%d", len(args)))
	}

	query := "SELECT " + wishColumns + " FROM wishes"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at DESC, id DESC"

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := d.repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}
	defer rows.Close()

	wishes := []*model.Wish{}
	for rows.Next() {
		wish, err := scanWish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wish: %w", err)
		}
		wishes = append(wishes, wish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishes: %w", err)
	}

	return wishes, nil
}

// UpdateDocument applies a partial update and returns the stored row.
func (d *WishDocuments) UpdateDocument(ctx context.Context, id string, patch messages.Patch) (*model.Wish, error) {
	query := `
		UPDATE wishes
		SET approved = COALESCE($2, approved)
		WHERE id = $1
		RETURNING ` + wishColumns

	wish, err := scanWish(d.repo.pool.QueryRow(ctx, query, id, patch.Approved))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, messages.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update wish: %w", err)
	}
	return wish, nil
}

// DeleteDocument permanently removes a wish.
func (d *WishDocuments) DeleteDocument(ctx context.Context, id string) error {
	tag, err := d.repo.pool.Exec(ctx, "DELETE FROM wishes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return messages.ErrNotFound
	}
	return nil
}

func scanWish(row pgx.Row) (*model.Wish, error) {
	var w model.Wish
	if err := row.Scan(&w.ID, &w.Name, &w.Message, &w.SubmittedAt, &w.Approved); err != nil {
		return nil, err
	}
	w.SubmittedAt = w.SubmittedAt.UTC()
	return &w, nil
}

var _ messages.Documents = (*WishDocuments)(nil)
