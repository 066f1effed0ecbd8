// File: internal/usecase/registry_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
)

// Compile-time check
var _ RegistryUseCase = (*registryUC)(nil)

// RegistryUseCase is the code registry: opaque code -> typed target. Codes
// are append-only; there is no update operation.
type RegistryUseCase interface {
	// Mint generates a fresh unpredictable code for (target, tier),
	// persists it and returns it. Collisions are retried.
	Mint(ctx context.Context, kind model.TargetKind, targetID string, tier model.LinkTier, createdBy int64) (string, error)
	// MintPair mints the normal and premium codes for one target. The two
	// tiers always get two distinct codes.
	MintPair(ctx context.Context, kind model.TargetKind, targetID string, createdBy int64) (normal, premium string, err error)
	// Resolve returns the link record or domain.ErrNotFound.
	Resolve(ctx context.Context, code string) (*model.LinkCode, error)
	// MarkUsed bumps usage counters after a successful delivery.
	MarkUsed(ctx context.Context, code string) error
}

// mintAttempts bounds collision retries. With 128-bit codes a collision is
// effectively impossible, but the contract handles it rather than assume.
const mintAttempts = 5

type registryUC struct {
	links repository.LinkRepository
	clock Clock
	log   *zerolog.Logger
}

func NewRegistryUseCase(links repository.LinkRepository, clock Clock, logger *zerolog.Logger) *registryUC {
	return &registryUC{links: links, clock: clock, log: logger}
}

func (u *registryUC) Mint(ctx context.Context, kind model.TargetKind, targetID string, tier model.LinkTier, createdBy int64) (string, error) {
	defer logging.TraceDuration(u.log, "RegistryUC.Mint")()

	var lastErr error
	for i := 0; i < mintAttempts; i++ {
		code, err := newLinkCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		link, err := model.NewLinkCode(code, kind, targetID, tier, createdBy, u.clock.Now())
		if err != nil {
			return "", err
		}
		if err := u.links.Insert(ctx, repository.NoTX, link); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				u.log.Warn().Str("kind", string(kind)).Msg("link code collision, retrying")
				lastErr = err
				continue
			}
			return "", fmt.Errorf("insert link: %w", err)
		}
		return code, nil
	}
	return "", fmt.Errorf("mint link code: %w", lastErr)
}

func (u *registryUC) MintPair(ctx context.Context, kind model.TargetKind, targetID string, createdBy int64) (string, string, error) {
	normal, err := u.Mint(ctx, kind, targetID, model.TierNormal, createdBy)
	if err != nil {
		return "", "", err
	}
	premium, err := u.Mint(ctx, kind, targetID, model.TierPremium, createdBy)
	if err != nil {
		return "", "", err
	}
	return normal, premium, nil
}

func (u *registryUC) Resolve(ctx context.Context, code string) (*model.LinkCode, error) {
	defer logging.TraceDuration(u.log, "RegistryUC.Resolve")()
	return u.links.FindByCode(ctx, repository.NoTX, code)
}

func (u *registryUC) MarkUsed(ctx context.Context, code string) error {
	return u.links.MarkUsed(ctx, repository.NoTX, code)
}
