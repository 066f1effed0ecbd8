package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-file-gate/internal/domain/ports/repository"
)

var _ repository.SettingsRepository = (*settingsRepo)(nil)

type settingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepo{pool: pool}
}

func (r *settingsRepo) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	const q = `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value;
`
	_, err := execSQL(ctx, r.pool, tx, q, key, value)
	return err
}

// Get returns "" for an absent key; absence is not an error here.
func (r *settingsRepo) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT value FROM settings WHERE key = $1;`, key)
	if err != nil {
		return "", err
	}
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (r *settingsRepo) Delete(ctx context.Context, tx repository.Tx, key string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM settings WHERE key = $1;`, key)
	return err
}
