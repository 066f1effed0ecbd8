// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"telegram-file-gate/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type Stats struct {
	Users         int
	Admins        int
	ActivePremium int
	Files         int
	Batches       int
	Links         int
	TokensTotal   int
	TokensUsed    int
}

type StatsUseCase interface {
	Collect(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	users   repository.UserRepository
	files   repository.ContentRepository
	batches repository.BatchRepository
	links   repository.LinkRepository
	tokens  repository.TokenRepository
	clock   Clock
}

func NewStatsUseCase(
	users repository.UserRepository,
	files repository.ContentRepository,
	batches repository.BatchRepository,
	links repository.LinkRepository,
	tokens repository.TokenRepository,
	clock Clock,
) *statsUC {
	return &statsUC{users: users, files: files, batches: batches, links: links, tokens: tokens, clock: clock}
}

func (u *statsUC) Collect(ctx context.Context) (*Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Users, err = u.users.CountUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.Admins, err = u.users.CountAdmins(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.ActivePremium, err = u.users.CountActivePremium(ctx, repository.NoTX, u.clock.Now()); err != nil {
		return nil, err
	}
	if s.Files, err = u.files.CountFiles(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.Batches, err = u.batches.CountBatches(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.Links, err = u.links.CountLinks(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if s.TokensTotal, s.TokensUsed, err = u.tokens.CountTokens(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	return &s, nil
}
