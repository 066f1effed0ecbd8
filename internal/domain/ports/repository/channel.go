package repository

import (
	"context"

	"telegram-file-gate/internal/domain/model"
)

type ChannelRepository interface {
	Save(ctx context.Context, tx Tx, ch *model.ForceChannel) error
	Remove(ctx context.Context, tx Tx, channelID int64) error
	// ListAll returns the global force-channel set ordered by channel id.
	ListAll(ctx context.Context, tx Tx) ([]*model.ForceChannel, error)
}
