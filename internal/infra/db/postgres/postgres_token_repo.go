package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
)

var _ repository.TokenRepository = (*tokenRepo)(nil)

type tokenRepo struct {
	pool *pgxpool.Pool
}

func NewTokenRepo(pool *pgxpool.Pool) repository.TokenRepository {
	return &tokenRepo{pool: pool}
}

func (r *tokenRepo) Insert(ctx context.Context, tx repository.Tx, t *model.RedemptionToken) error {
	const q = `
INSERT INTO tokens (token, created_by, created_at, used_by, used_at, grant_seconds)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.Token, t.CreatedBy, t.CreatedAt, t.UsedBy, t.UsedAt, int64(t.Grant/time.Second),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *tokenRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.RedemptionToken, error) {
	const q = `
SELECT token, created_by, created_at, used_by, used_at, grant_seconds
  FROM tokens WHERE token = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, token)
	if err != nil {
		return nil, err
	}
	var (
		t       model.RedemptionToken
		grantSec int64
	)
	if err := row.Scan(&t.Token, &t.CreatedBy, &t.CreatedAt, &t.UsedBy, &t.UsedAt, &grantSec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	t.Grant = time.Duration(grantSec) * time.Second
	return &t, nil
}

// ClaimUnused is the single-winner consumption step. The conditional UPDATE
// only matches a still-unused row; a lost race reports zero rows affected.
func (r *tokenRepo) ClaimUnused(ctx context.Context, tx repository.Tx, token string, userID int64, at time.Time) (bool, error) {
	const q = `
UPDATE tokens SET used_by = $2, used_at = $3
 WHERE token = $1 AND used_by IS NULL;
`
	tag, err := execSQL(ctx, r.pool, tx, q, token, userID, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tokenRepo) CountTokens(ctx context.Context, tx repository.Tx) (int, int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*), COUNT(used_by) FROM tokens;`)
	if err != nil {
		return 0, 0, err
	}
	var total, used int
	if err := row.Scan(&total, &used); err != nil {
		return 0, 0, fmt.Errorf("count tokens: %w", err)
	}
	return total, used, nil
}
