// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/logging"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase is the custom-batch staging area: one active session per
// admin, accumulated item by item, destroyed on finalize or cancel.
type SessionUseCase interface {
	// Start creates a fresh session, silently discarding any prior one.
	Start(ctx context.Context, adminID int64) error
	// Append adds a stored content item; domain.ErrNoActiveSession if the
	// admin has no session. Returns the running item count.
	Append(ctx context.Context, adminID int64, fileID string) (int, error)
	Cancel(ctx context.Context, adminID int64) error
	// Finalize freezes the accumulated sequence as a batch, mints the
	// normal+premium code pair and destroys the session.
	// domain.ErrEmptySession when nothing was appended.
	Finalize(ctx context.Context, adminID int64) (normalCode, premiumCode string, count int, err error)
}

type sessionUC struct {
	sessions repository.BatchSessionRepository
	files    repository.ContentRepository
	batches  repository.BatchRepository
	registry RegistryUseCase
	clock    Clock
	log      *zerolog.Logger
}

func NewSessionUseCase(
	sessions repository.BatchSessionRepository,
	files repository.ContentRepository,
	batches repository.BatchRepository,
	registry RegistryUseCase,
	clock Clock,
	logger *zerolog.Logger,
) *sessionUC {
	return &sessionUC{
		sessions: sessions,
		files:    files,
		batches:  batches,
		registry: registry,
		clock:    clock,
		log:      logger,
	}
}

func (u *sessionUC) Start(ctx context.Context, adminID int64) error {
	if adminID <= 0 {
		return domain.ErrInvalidArgument
	}
	s := &model.BatchSession{AdminID: adminID, StartedAt: u.clock.Now()}
	return u.sessions.Put(ctx, s)
}

func (u *sessionUC) Append(ctx context.Context, adminID int64, fileID string) (int, error) {
	s, err := u.sessions.Get(ctx, adminID)
	if err != nil {
		return 0, err
	}
	s.FileIDs = append(s.FileIDs, fileID)
	if err := u.sessions.Put(ctx, s); err != nil {
		return 0, err
	}
	return len(s.FileIDs), nil
}

func (u *sessionUC) Cancel(ctx context.Context, adminID int64) error {
	return u.sessions.Delete(ctx, adminID)
}

func (u *sessionUC) Finalize(ctx context.Context, adminID int64) (string, string, int, error) {
	defer logging.TraceDuration(u.log, "SessionUC.Finalize")()

	s, err := u.sessions.Get(ctx, adminID)
	if err != nil {
		return "", "", 0, err
	}
	if len(s.FileIDs) == 0 {
		return "", "", 0, domain.ErrEmptySession
	}

	items := make([]*model.ContentItem, 0, len(s.FileIDs))
	for _, id := range s.FileIDs {
		f, err := u.files.FindByID(ctx, repository.NoTX, id)
		if err != nil {
			return "", "", 0, fmt.Errorf("load staged item %s: %w", id, err)
		}
		items = append(items, f)
	}

	batch, err := model.NewCustomBatch(ulid.Make().String(), items, adminID, u.clock.Now())
	if err != nil {
		return "", "", 0, err
	}
	if err := u.batches.Save(ctx, repository.NoTX, batch); err != nil {
		return "", "", 0, fmt.Errorf("save batch: %w", err)
	}
	normal, premium, err := u.registry.MintPair(ctx, model.TargetBatch, batch.ID, adminID)
	if err != nil {
		return "", "", 0, err
	}
	if err := u.sessions.Delete(ctx, adminID); err != nil {
		u.log.Warn().Err(err).Int64("admin", adminID).Msg("stale batch session left behind")
	}
	return normal, premium, len(items), nil
}
