// File: internal/usecase/link_uc.go
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
	"telegram-file-gate/internal/infra/metrics"
)

// Compile-time check
var _ LinkUseCase = (*linkUC)(nil)

// LinkUseCase is the admin-facing minting surface: it stores content,
// freezes batches and mints dual-tier code pairs over them.
type LinkUseCase interface {
	// IngestFile stores (or dedups) a content item and returns its id.
	IngestFile(ctx context.Context, tgFileID, uniqueID string, kind model.FileKind, name string, addedBy int64) (string, error)
	// MintFilePair mints the normal+premium codes for one stored item.
	MintFilePair(ctx context.Context, fileID string, createdBy int64) (normal, premium string, err error)
	// MintRangePair freezes a channel post range [startID, endID] into a
	// batch and mints its code pair. The minting admin's adminship of the
	// source channel is verified here, at mint time; resolution later
	// reuses the frozen list without re-checking.
	MintRangePair(ctx context.Context, adminID, channelID int64, startID, endID int) (normal, premium string, total int, err error)
}

type linkUC struct {
	files      repository.ContentRepository
	batches    repository.BatchRepository
	registry   RegistryUseCase
	membership MembershipUseCase
	maxPosts   int
	clock      Clock
	log        *zerolog.Logger
}

func NewLinkUseCase(
	files repository.ContentRepository,
	batches repository.BatchRepository,
	registry RegistryUseCase,
	membership MembershipUseCase,
	maxPosts int,
	clock Clock,
	logger *zerolog.Logger,
) *linkUC {
	if maxPosts <= 0 {
		maxPosts = 200
	}
	return &linkUC{
		files:      files,
		batches:    batches,
		registry:   registry,
		membership: membership,
		maxPosts:   maxPosts,
		clock:      clock,
		log:        logger,
	}
}

func (u *linkUC) IngestFile(ctx context.Context, tgFileID, uniqueID string, kind model.FileKind, name string, addedBy int64) (string, error) {
	item, err := model.NewContentItem(ulid.Make().String(), tgFileID, uniqueID, kind, name, addedBy, u.clock.Now())
	if err != nil {
		return "", err
	}
	id, err := u.files.Save(ctx, repository.NoTX, item)
	if err != nil {
		return "", fmt.Errorf("save content item: %w", err)
	}
	return id, nil
}

func (u *linkUC) MintFilePair(ctx context.Context, fileID string, createdBy int64) (string, string, error) {
	defer logging.TraceDuration(u.log, "LinkUC.MintFilePair")()

	if _, err := u.files.FindByID(ctx, repository.NoTX, fileID); err != nil {
		return "", "", err
	}
	normal, premium, err := u.registry.MintPair(ctx, model.TargetFile, fileID, createdBy)
	if err != nil {
		return "", "", err
	}
	metrics.IncLinkMinted(string(model.TargetFile))
	return normal, premium, nil
}

func (u *linkUC) MintRangePair(ctx context.Context, adminID, channelID int64, startID, endID int) (string, string, int, error) {
	defer logging.TraceDuration(u.log, "LinkUC.MintRangePair")()

	if !u.membership.VerifyChannelAdmin(ctx, channelID, adminID) {
		return "", "", 0, domain.ErrNotChannelAdmin
	}
	batch, err := model.NewRangeBatch(ulid.Make().String(), channelID, startID, endID, u.maxPosts, adminID, u.clock.Now())
	if err != nil {
		return "", "", 0, err
	}
	if err := u.batches.Save(ctx, repository.NoTX, batch); err != nil {
		return "", "", 0, fmt.Errorf("save range batch: %w", err)
	}
	normal, premium, err := u.registry.MintPair(ctx, model.TargetBatch, batch.ID, adminID)
	if err != nil {
		return "", "", 0, err
	}
	metrics.IncLinkMinted(string(model.TargetBatch))
	return normal, premium, len(batch.Items), nil
}
