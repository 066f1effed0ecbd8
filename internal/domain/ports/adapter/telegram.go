package adapter

import (
	"context"

	"telegram-file-gate/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// MessengerAdapter is the outbound messaging surface of the bot.
type MessengerAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
	SendButtons(ctx context.Context, telegramID int64, text string, rows [][]InlineButton) error
}

// MembershipAdapter is the external membership query collaborator. It is
// treated as unreliable; implementations map every failure to an error and
// the verifier collapses errors into the Unknown outcome.
type MembershipAdapter interface {
	// ChatMember reports whether userID currently belongs to channelID.
	ChatMember(ctx context.Context, channelID, userID int64) (model.MembershipStatus, error)
	// IsChannelAdmin reports whether userID administers channelID. Used at
	// range-mint time only.
	IsChannelAdmin(ctx context.Context, channelID, userID int64) (bool, error)
}

// DeliveryAdapter transmits resolved content to a chat. Implementations
// inject the caption and report the sent message id so deletion can be
// scheduled by the caller.
type DeliveryAdapter interface {
	DeliverFile(ctx context.Context, chatID int64, item *model.ContentItem, caption string) (messageID int, err error)
	CopyPost(ctx context.Context, chatID, fromChannelID int64, messageID int) (newMessageID int, err error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
