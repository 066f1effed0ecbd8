// File: internal/usecase/access_uc.go
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
	"telegram-file-gate/internal/infra/metrics"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

type DecisionKind int

const (
	DecisionNotFound DecisionKind = iota
	DecisionMembershipRequired
	DecisionPremiumRequired
	DecisionAllow
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionMembershipRequired:
		return "membership_required"
	case DecisionPremiumRequired:
		return "premium_required"
	case DecisionAllow:
		return "allow"
	default:
		return "not_found"
	}
}

// Decision is the outcome of one deep-link resolution. MissingChannels is
// populated only for DecisionMembershipRequired; Items and Tier only for
// DecisionAllow.
type Decision struct {
	Kind            DecisionKind
	Code            string
	Tier            model.LinkTier
	Items           []model.DeliveryItem
	MissingChannels []*model.ForceChannel
}

// AccessUseCase orchestrates a resolution: registry lookup, force-channel
// verification, tier gate. It mutates nothing; delivery belongs to the
// caller.
type AccessUseCase interface {
	Resolve(ctx context.Context, code string, userID int64) (*Decision, error)
}

type accessUC struct {
	registry   RegistryUseCase
	membership MembershipUseCase
	ledger     EntitlementUseCase
	files      repository.ContentRepository
	batches    repository.BatchRepository
	log        *zerolog.Logger
}

func NewAccessUseCase(
	registry RegistryUseCase,
	membership MembershipUseCase,
	ledger EntitlementUseCase,
	files repository.ContentRepository,
	batches repository.BatchRepository,
	logger *zerolog.Logger,
) *accessUC {
	return &accessUC{
		registry:   registry,
		membership: membership,
		ledger:     ledger,
		files:      files,
		batches:    batches,
		log:        logger,
	}
}

// Resolve evaluates the access policy for a code. Ordering is a contract:
// membership is always checked before entitlement, so a user failing both
// gates sees the join prompt first.
func (u *accessUC) Resolve(ctx context.Context, code string, userID int64) (*Decision, error) {
	defer logging.TraceDuration(u.log, "AccessUC.Resolve")()

	link, err := u.registry.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncResolution(DecisionNotFound.String())
			return &Decision{Kind: DecisionNotFound, Code: code}, nil
		}
		return nil, fmt.Errorf("resolve code: %w", err)
	}

	// Owner and admins are never blocked by the force-join gate.
	staff, err := u.ledger.IsStaff(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !staff {
		ok, missing, err := u.membership.CheckAll(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("membership check: %w", err)
		}
		if !ok {
			metrics.IncResolution(DecisionMembershipRequired.String())
			return &Decision{Kind: DecisionMembershipRequired, Code: code, MissingChannels: missing}, nil
		}
	}

	if link.Tier == model.TierPremium {
		active, err := u.ledger.IsActivePremium(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("premium check: %w", err)
		}
		if !active {
			metrics.IncResolution(DecisionPremiumRequired.String())
			return &Decision{Kind: DecisionPremiumRequired, Code: code, Tier: link.Tier}, nil
		}
	}

	items, err := u.loadItems(ctx, link)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncResolution(DecisionNotFound.String())
			return &Decision{Kind: DecisionNotFound, Code: code}, nil
		}
		return nil, err
	}
	metrics.IncResolution(DecisionAllow.String())
	return &Decision{Kind: DecisionAllow, Code: code, Tier: link.Tier, Items: items}, nil
}

func (u *accessUC) loadItems(ctx context.Context, link *model.LinkCode) ([]model.DeliveryItem, error) {
	switch link.TargetKind {
	case model.TargetFile:
		f, err := u.files.FindByID(ctx, repository.NoTX, link.TargetID)
		if err != nil {
			return nil, err
		}
		return []model.DeliveryItem{{Kind: model.DeliveryKindFile, File: f}}, nil
	case model.TargetBatch:
		b, err := u.batches.FindByID(ctx, repository.NoTX, link.TargetID)
		if err != nil {
			return nil, err
		}
		return b.Items, nil
	default:
		return nil, domain.ErrInvalidArgument
	}
}
