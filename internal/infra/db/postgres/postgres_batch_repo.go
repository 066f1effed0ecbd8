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

var _ repository.BatchRepository = (*batchRepo)(nil)

type batchRepo struct {
	pool *pgxpool.Pool
}

func NewBatchRepo(pool *pgxpool.Pool) repository.BatchRepository {
	return &batchRepo{pool: pool}
}

// Save writes the batch header and its frozen item rows. Should run inside a
// transaction so a partial item list never becomes visible.
func (r *batchRepo) Save(ctx context.Context, tx repository.Tx, b *model.Batch) error {
	const hq = `
INSERT INTO batches (id, kind, created_by, created_at)
VALUES ($1, $2, $3, $4);
`
	if _, err := execSQL(ctx, r.pool, tx, hq, b.ID, b.Kind, b.CreatedBy, b.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}

	const iq = `
INSERT INTO batch_items (batch_id, ord, item_kind, file_id, channel_id, message_id)
VALUES ($1, $2, $3, $4, $5, $6);
`
	for i, it := range b.Items {
		var fileID interface{}
		if it.File != nil {
			fileID = it.File.ID
		}
		if _, err := execSQL(ctx, r.pool, tx, iq, b.ID, i, it.Kind, fileID, it.ChannelID, it.MessageID); err != nil {
			return fmt.Errorf("save batch item %d: %w", i, err)
		}
	}
	return nil
}

// FindByID loads the header plus items in stored order, joining file rows
// for file-kind items so callers get deliverable content directly.
func (r *batchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Batch, error) {
	const hq = `SELECT id, kind, created_by, created_at FROM batches WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, hq, id)
	if err != nil {
		return nil, err
	}
	var b model.Batch
	if err := row.Scan(&b.ID, &b.Kind, &b.CreatedBy, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const iq = `
SELECT bi.item_kind, bi.channel_id, bi.message_id,
       f.id, f.tg_file_id, f.file_unique_id, f.file_kind, f.file_name, f.added_by, f.added_at
  FROM batch_items bi
  LEFT JOIN files f ON f.id = bi.file_id
 WHERE bi.batch_id = $1
 ORDER BY bi.ord;
`
	rows, err := queryRows(ctx, r.pool, tx, iq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it       model.DeliveryItem
			fid      *string
			tgFileID *string
			uniqueID *string
			kind     *string
			name     *string
			addedBy  *int64
			addedAt  *time.Time
		)
		if err := rows.Scan(&it.Kind, &it.ChannelID, &it.MessageID, &fid, &tgFileID, &uniqueID, &kind, &name, &addedBy, &addedAt); err != nil {
			return nil, err
		}
		if fid != nil {
			it.File = &model.ContentItem{
				ID:       *fid,
				TGFileID: deref(tgFileID),
				UniqueID: deref(uniqueID),
				Kind:     model.FileKind(deref(kind)),
				Name:     deref(name),
			}
			if addedBy != nil {
				it.File.AddedBy = *addedBy
			}
			if addedAt != nil {
				it.File.AddedAt = *addedAt
			}
		}
		b.Items = append(b.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepo) CountBatches(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM batches;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
