package repository

import (
	"context"

	"telegram-file-gate/internal/domain/model"
)

type ContentRepository interface {
	// Save stores the item, deduplicating on the platform unique id: when a
	// row with the same UniqueID exists its ID is returned instead.
	Save(ctx context.Context, tx Tx, item *model.ContentItem) (id string, err error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.ContentItem, error)
	CountFiles(ctx context.Context, tx Tx) (int, error)
}
