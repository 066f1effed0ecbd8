package repository

import (
	"context"
	"time"

	"telegram-file-gate/internal/domain/model"
)

type UserRepository interface {
	// Save upserts the user row, keeping premium_until when the incoming
	// value is nil and the stored one is not.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	// SetPremiumUntil writes the expiry instant; nil clears it.
	SetPremiumUntil(ctx context.Context, tx Tx, tgID int64, until *time.Time) error
	SetAdmin(ctx context.Context, tx Tx, tgID int64, isAdmin bool) error
	ListIDs(ctx context.Context, tx Tx) ([]int64, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountAdmins(ctx context.Context, tx Tx) (int, error)
	CountActivePremium(ctx context.Context, tx Tx, now time.Time) (int, error)
}
