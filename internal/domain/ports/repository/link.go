package repository

import (
	"context"

	"telegram-file-gate/internal/domain/model"
)

// LinkRepository is the append-only code registry store. Insert fails with
// domain.ErrAlreadyExists on a code collision so the minting layer can retry.
type LinkRepository interface {
	Insert(ctx context.Context, tx Tx, link *model.LinkCode) error
	// FindByCode returns domain.ErrNotFound for unknown or removed codes.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.LinkCode, error)
	MarkUsed(ctx context.Context, tx Tx, code string) error
	CountLinks(ctx context.Context, tx Tx) (int, error)
}
