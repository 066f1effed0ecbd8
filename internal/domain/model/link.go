package model

import (
	"time"

	"telegram-file-gate/internal/domain"
)

type LinkTier string

const (
	TierNormal  LinkTier = "normal"
	TierPremium LinkTier = "premium"
)

type TargetKind string

const (
	TargetFile  TargetKind = "file"  // single content item
	TargetBatch TargetKind = "batch" // frozen ordered item sequence (range or custom)
)

// LinkCode maps an opaque deep-link code to a typed target. Immutable once
// minted; the two tiers of the same target always get two distinct codes.
// Removed is a shadow state reserved for future revocation: removed codes
// resolve as not-found but the row is never deleted.
type LinkCode struct {
	Code       string
	TargetKind TargetKind
	TargetID   string
	Tier       LinkTier
	CreatedBy  int64
	CreatedAt  time.Time
	LastUsedAt *time.Time
	Uses       int
	Removed    bool
}

func NewLinkCode(code string, kind TargetKind, targetID string, tier LinkTier, createdBy int64, now time.Time) (*LinkCode, error) {
	if code == "" || targetID == "" || createdBy <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch kind {
	case TargetFile, TargetBatch:
	default:
		return nil, domain.ErrInvalidArgument
	}
	switch tier {
	case TierNormal, TierPremium:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &LinkCode{
		Code:       code,
		TargetKind: kind,
		TargetID:   targetID,
		Tier:       tier,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}, nil
}
