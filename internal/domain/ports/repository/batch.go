package repository

import (
	"context"

	"telegram-file-gate/internal/domain/model"
)

type BatchRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Batch) error
	// FindByID loads the batch with its frozen item sequence in order.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Batch, error)
	CountBatches(ctx context.Context, tx Tx) (int, error)
}

// BatchSessionRepository is the keyed staging store for custom-batch
// accumulation. Process-external (redis) in production; lifetime is bounded
// by a TTL, not guaranteed durable.
type BatchSessionRepository interface {
	Put(ctx context.Context, s *model.BatchSession) error
	// Get returns domain.ErrNoActiveSession when none exists for the admin.
	Get(ctx context.Context, adminID int64) (*model.BatchSession, error)
	Delete(ctx context.Context, adminID int64) error
}
