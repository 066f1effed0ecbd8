package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
)

var _ repository.ChannelRepository = (*channelRepo)(nil)

type channelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) repository.ChannelRepository {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) Save(ctx context.Context, tx repository.Tx, ch *model.ForceChannel) error {
	const q = `
INSERT INTO force_channels (channel_id, invite_link, title, username, verifiable, added_by, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (channel_id) DO UPDATE SET
  invite_link = EXCLUDED.invite_link,
  title       = EXCLUDED.title,
  username    = EXCLUDED.username,
  verifiable  = EXCLUDED.verifiable;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		ch.ChannelID, ch.InviteLink, ch.Title, ch.Username, ch.Verifiable, ch.AddedBy, ch.AddedAt,
	)
	return err
}

func (r *channelRepo) Remove(ctx context.Context, tx repository.Tx, channelID int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM force_channels WHERE channel_id = $1;`, channelID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAll returns a stable order so membership results and prompts stay
// deterministic across checks.
func (r *channelRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ForceChannel, error) {
	const q = `
SELECT channel_id, invite_link, title, username, verifiable, added_by, added_at
  FROM force_channels ORDER BY channel_id;
`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ForceChannel
	for rows.Next() {
		var ch model.ForceChannel
		if err := rows.Scan(&ch.ChannelID, &ch.InviteLink, &ch.Title, &ch.Username, &ch.Verifiable, &ch.AddedBy, &ch.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, &ch)
	}
	return out, rows.Err()
}
