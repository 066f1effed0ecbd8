package model

import (
	"time"

	"telegram-file-gate/internal/domain"
)

// RedemptionToken grants a fixed premium duration and is usable exactly once.
// UsedBy/UsedAt are set only on redemption (nil while unused).
type RedemptionToken struct {
	Token     string
	CreatedBy int64
	CreatedAt time.Time
	UsedBy    *int64
	UsedAt    *time.Time
	Grant     time.Duration
}

func NewRedemptionToken(token string, createdBy int64, grant time.Duration, now time.Time) (*RedemptionToken, error) {
	if token == "" || createdBy <= 0 || grant <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &RedemptionToken{
		Token:     token,
		CreatedBy: createdBy,
		CreatedAt: now,
		Grant:     grant,
	}, nil
}

func (t *RedemptionToken) Used() bool { return t != nil && t.UsedBy != nil }
