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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

// Save upserts the row. A nil PremiumUntil on the incoming value never
// clears a stored expiry; clearing goes through SetPremiumUntil.
func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (telegram_id, first_name, username, premium_until, is_admin, registered_at, last_seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (telegram_id) DO UPDATE SET
  first_name    = EXCLUDED.first_name,
  username      = EXCLUDED.username,
  premium_until = COALESCE(EXCLUDED.premium_until, users.premium_until),
  last_seen_at  = EXCLUDED.last_seen_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.TelegramID, u.FirstName, u.Username, u.PremiumUntil, u.IsAdmin, u.RegisteredAt, u.LastSeenAt,
	)
	return err
}

func (r *userRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	const q = `
SELECT telegram_id, first_name, username, premium_until, is_admin, registered_at, last_seen_at
  FROM users WHERE telegram_id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.TelegramID, &u.FirstName, &u.Username, &u.PremiumUntil, &u.IsAdmin, &u.RegisteredAt, &u.LastSeenAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) SetPremiumUntil(ctx context.Context, tx repository.Tx, tgID int64, until *time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE users SET premium_until = $2 WHERE telegram_id = $1;`, tgID, until)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) SetAdmin(ctx context.Context, tx repository.Tx, tgID int64, isAdmin bool) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE users SET is_admin = $2 WHERE telegram_id = $1;`, tgID, isAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) ListIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT telegram_id FROM users ORDER BY telegram_id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *userRepo) CountAdmins(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE is_admin = TRUE;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *userRepo) CountActivePremium(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE premium_until IS NOT NULL AND premium_until > $1;`, now)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count active premium: %w", err)
	}
	return n, nil
}
