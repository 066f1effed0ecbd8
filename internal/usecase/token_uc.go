// File: internal/usecase/token_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
	"telegram-file-gate/internal/infra/metrics"
)

// Compile-time check
var _ TokenUseCase = (*tokenUC)(nil)

// maxTokensPerIssue caps one issuing call; keeps the reply message bounded.
const maxTokensPerIssue = 20

// TokenUseCase is the one-time redemption token vault.
type TokenUseCase interface {
	// Issue creates count unused tokens, each bound to the configured grant
	// duration. count is clamped to [1, 20].
	Issue(ctx context.Context, creatorID int64, count int) ([]string, error)
	// Redeem atomically flips the token unused->used and credits the
	// entitlement ledger in the same transaction. Exactly one concurrent
	// redeemer wins; losers observe domain.ErrTokenAlreadyUsed. Unknown
	// tokens yield domain.ErrTokenNotFound.
	Redeem(ctx context.Context, token string, userID int64) (newExpiry time.Time, err error)
}

type tokenUC struct {
	tokens repository.TokenRepository
	ledger EntitlementUseCase
	tm     repository.TransactionManager
	grant  time.Duration
	clock  Clock
	log    *zerolog.Logger
}

func NewTokenUseCase(tokens repository.TokenRepository, ledger EntitlementUseCase, tm repository.TransactionManager, grant time.Duration, clock Clock, logger *zerolog.Logger) *tokenUC {
	if grant <= 0 {
		grant = 24 * time.Hour
	}
	return &tokenUC{tokens: tokens, ledger: ledger, tm: tm, grant: grant, clock: clock, log: logger}
}

func (u *tokenUC) Issue(ctx context.Context, creatorID int64, count int) ([]string, error) {
	defer logging.TraceDuration(u.log, "TokenUC.Issue")()

	if count < 1 {
		count = 1
	}
	if count > maxTokensPerIssue {
		count = maxTokensPerIssue
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		raw, err := newRedeemToken()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		t, err := model.NewRedemptionToken(raw, creatorID, u.grant, u.clock.Now())
		if err != nil {
			return nil, err
		}
		if err := u.tokens.Insert(ctx, repository.NoTX, t); err != nil {
			return nil, fmt.Errorf("insert token: %w", err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func (u *tokenUC) Redeem(ctx context.Context, token string, userID int64) (time.Time, error) {
	defer logging.TraceDuration(u.log, "TokenUC.Redeem")()

	var until time.Time
	// Claim and credit are one transaction: if crediting fails the claim
	// rolls back, so no token is ever consumed without its grant applied.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.tokens.FindByToken(ctx, tx, token)
		if err != nil {
			return err
		}
		claimed, err := u.tokens.ClaimUnused(ctx, tx, token, userID, u.clock.Now())
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrTokenAlreadyUsed
		}
		until, err = u.ledger.GrantTx(ctx, tx, userID, t.Grant)
		return err
	})
	if err != nil {
		switch err {
		case domain.ErrTokenNotFound:
			metrics.IncRedemption("not_found")
		case domain.ErrTokenAlreadyUsed:
			metrics.IncRedemption("already_used")
		default:
			metrics.IncRedemption("error")
		}
		return time.Time{}, err
	}
	metrics.IncRedemption("granted")
	u.log.Info().Int64("user", userID).Time("until", until).Msg("token redeemed")
	return until, nil
}
