package repository

import (
	"context"
	"time"

	"telegram-file-gate/internal/domain/model"
)

type TokenRepository interface {
	Insert(ctx context.Context, tx Tx, t *model.RedemptionToken) error
	// FindByToken returns the row regardless of used state;
	// domain.ErrTokenNotFound when absent.
	FindByToken(ctx context.Context, tx Tx, token string) (*model.RedemptionToken, error)
	// ClaimUnused atomically marks the token used by userID iff it is still
	// unused. Returns false when another redeemer won or the token is absent.
	ClaimUnused(ctx context.Context, tx Tx, token string, userID int64, at time.Time) (bool, error)
	CountTokens(ctx context.Context, tx Tx) (total int, used int, err error)
}
