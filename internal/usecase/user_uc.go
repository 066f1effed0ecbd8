// File: internal/usecase/user_uc.go
package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot flows. Users are
// created on first interaction and never deleted.
type UserUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, firstName, username string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	clock Clock
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, clock Clock, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, clock: clock, log: logger}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, firstName, username string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	// Find and save as one atomic unit so two first interactions cannot
	// race into duplicate inserts.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		if usr != nil {
			if firstName != "" {
				usr.FirstName = firstName
			}
			if username != "" {
				usr.Username = username
			}
			usr.Touch(u.clock.Now())
			if err := u.users.Save(ctx, tx, usr); err != nil {
				return err
			}
			user = usr
			return nil
		}
		nu, err := model.NewUser(tgID, firstName, username, u.clock.Now())
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		return nil
	})
	return user, err
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) ListIDs(ctx context.Context) ([]int64, error) {
	return u.users.ListIDs(ctx, repository.NoTX)
}
