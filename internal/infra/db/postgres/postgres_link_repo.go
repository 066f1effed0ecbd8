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

var _ repository.LinkRepository = (*linkRepo)(nil)

type linkRepo struct {
	pool *pgxpool.Pool
}

func NewLinkRepo(pool *pgxpool.Pool) repository.LinkRepository {
	return &linkRepo{pool: pool}
}

// Insert is append-only. A code collision surfaces as domain.ErrAlreadyExists
// so the minting layer can regenerate and retry.
func (r *linkRepo) Insert(ctx context.Context, tx repository.Tx, link *model.LinkCode) error {
	const q = `
INSERT INTO links (code, target_kind, target_id, tier, created_by, created_at, last_used_at, uses, removed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		link.Code, link.TargetKind, link.TargetID, link.Tier, link.CreatedBy, link.CreatedAt, link.LastUsedAt, link.Uses, link.Removed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByCode treats removed codes as absent.
func (r *linkRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.LinkCode, error) {
	const q = `
SELECT code, target_kind, target_id, tier, created_by, created_at, last_used_at, uses, removed
  FROM links WHERE code = $1 AND removed = FALSE;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var l model.LinkCode
	if err := row.Scan(&l.Code, &l.TargetKind, &l.TargetID, &l.Tier, &l.CreatedBy, &l.CreatedAt, &l.LastUsedAt, &l.Uses, &l.Removed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *linkRepo) MarkUsed(ctx context.Context, tx repository.Tx, code string) error {
	const q = `UPDATE links SET uses = uses + 1, last_used_at = NOW() WHERE code = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *linkRepo) CountLinks(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM links WHERE removed = FALSE;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return n, nil
}
