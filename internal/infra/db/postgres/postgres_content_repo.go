package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
)

var _ repository.ContentRepository = (*contentRepo)(nil)

type contentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) repository.ContentRepository {
	return &contentRepo{pool: pool}
}

// Save deduplicates on the platform unique id: when a row with the same
// UniqueID already exists its stored id is returned instead of inserting.
func (r *contentRepo) Save(ctx context.Context, tx repository.Tx, item *model.ContentItem) (string, error) {
	if item.UniqueID != "" {
		row, err := pickRow(ctx, r.pool, tx, `SELECT id FROM files WHERE file_unique_id = $1 LIMIT 1;`, item.UniqueID)
		if err != nil {
			return "", err
		}
		var existing string
		switch err := row.Scan(&existing); {
		case err == nil:
			return existing, nil
		case errors.Is(err, pgx.ErrNoRows):
			// fall through to insert
		default:
			return "", err
		}
	}

	const q = `
INSERT INTO files (id, tg_file_id, file_unique_id, file_kind, file_name, added_by, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		item.ID, item.TGFileID, item.UniqueID, item.Kind, item.Name, item.AddedBy, item.AddedAt,
	)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

func (r *contentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ContentItem, error) {
	const q = `
SELECT id, tg_file_id, file_unique_id, file_kind, file_name, added_by, added_at
  FROM files WHERE id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var it model.ContentItem
	if err := row.Scan(&it.ID, &it.TGFileID, &it.UniqueID, &it.Kind, &it.Name, &it.AddedBy, &it.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *contentRepo) CountFiles(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM files;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
