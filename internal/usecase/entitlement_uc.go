// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase is the premium-expiry ledger plus the parallel role
// ledger (admin/owner). All time comparisons go through the injected clock.
type EntitlementUseCase interface {
	IsActivePremium(ctx context.Context, userID int64) (bool, error)
	// Grant extends the premium window by duration from max(now, current
	// expiry), so repeated grants stack. Returns the new expiry.
	Grant(ctx context.Context, userID int64, duration time.Duration) (time.Time, error)
	// GrantTx is Grant running inside an enclosing transaction.
	GrantTx(ctx context.Context, tx repository.Tx, userID int64, duration time.Duration) (time.Time, error)
	Revoke(ctx context.Context, userID int64) error

	// Role ledger.
	IsOwner(userID int64) bool
	IsStaff(ctx context.Context, userID int64) (bool, error)
	AddAdmin(ctx context.Context, userID int64) error
	RemoveAdmin(ctx context.Context, userID int64) error
}

type entitlementUC struct {
	users   repository.UserRepository
	tm      repository.TransactionManager
	clock   Clock
	ownerID int64
	log     *zerolog.Logger
}

func NewEntitlementUseCase(users repository.UserRepository, tm repository.TransactionManager, clock Clock, ownerID int64, logger *zerolog.Logger) *entitlementUC {
	return &entitlementUC{users: users, tm: tm, clock: clock, ownerID: ownerID, log: logger}
}

func (u *entitlementUC) IsActivePremium(ctx context.Context, userID int64) (bool, error) {
	usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return usr.PremiumActive(u.clock.Now()), nil
}

func (u *entitlementUC) Grant(ctx context.Context, userID int64, duration time.Duration) (time.Time, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.Grant")()

	var until time.Time
	// Read-modify-write on one user's expiry; serializable so concurrent
	// grants stack instead of overwriting each other.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		var err error
		until, err = u.grant(ctx, tx, userID, duration)
		return err
	})
	return until, err
}

func (u *entitlementUC) GrantTx(ctx context.Context, tx repository.Tx, userID int64, duration time.Duration) (time.Time, error) {
	return u.grant(ctx, tx, userID, duration)
}

func (u *entitlementUC) grant(ctx context.Context, tx repository.Tx, userID int64, duration time.Duration) (time.Time, error) {
	if userID <= 0 || duration <= 0 {
		return time.Time{}, domain.ErrInvalidArgument
	}
	now := u.clock.Now()
	base := now
	usr, err := u.users.FindByTelegramID(ctx, tx, userID)
	switch err {
	case nil:
		if usr.PremiumUntil != nil && usr.PremiumUntil.After(base) {
			base = *usr.PremiumUntil
		}
	case domain.ErrNotFound:
		// First grant may precede the user's first interaction; create the
		// row so the expiry has somewhere to live.
		nu, nerr := model.NewUser(userID, "", "", now)
		if nerr != nil {
			return time.Time{}, nerr
		}
		if serr := u.users.Save(ctx, tx, nu); serr != nil {
			return time.Time{}, serr
		}
	default:
		return time.Time{}, err
	}
	until := base.Add(duration)
	if err := u.users.SetPremiumUntil(ctx, tx, userID, &until); err != nil {
		return time.Time{}, err
	}
	u.log.Info().Int64("user", userID).Time("until", until).Msg("premium granted")
	return until, nil
}

func (u *entitlementUC) Revoke(ctx context.Context, userID int64) error {
	return u.users.SetPremiumUntil(ctx, repository.NoTX, userID, nil)
}

func (u *entitlementUC) IsOwner(userID int64) bool { return userID == u.ownerID }

// IsStaff reports owner or admin. Staff bypass the force-join gate and may
// mint links.
func (u *entitlementUC) IsStaff(ctx context.Context, userID int64) (bool, error) {
	if u.IsOwner(userID) {
		return true, nil
	}
	usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, userID)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return usr.IsAdmin, nil
}

func (u *entitlementUC) AddAdmin(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return domain.ErrInvalidArgument
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	return u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.users.FindByTelegramID(ctx, tx, userID); err == domain.ErrNotFound {
			nu, nerr := model.NewUser(userID, "", "", u.clock.Now())
			if nerr != nil {
				return nerr
			}
			if serr := u.users.Save(ctx, tx, nu); serr != nil {
				return serr
			}
		} else if err != nil {
			return err
		}
		return u.users.SetAdmin(ctx, tx, userID, true)
	})
}

func (u *entitlementUC) RemoveAdmin(ctx context.Context, userID int64) error {
	return u.users.SetAdmin(ctx, repository.NoTX, userID, false)
}
