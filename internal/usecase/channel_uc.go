// File: internal/usecase/channel_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/domain/ports/repository"
)

// Compile-time check
var _ ChannelUseCase = (*channelUC)(nil)

// ChannelUseCase manages the global force-channel set.
type ChannelUseCase interface {
	// Add registers a required channel. Verifiable records whether the bot
	// could query membership for it at configuration time; an unverifiable
	// channel still denies everybody (fail-closed), so surfacing the flag
	// lets the admin fix bot permissions.
	Add(ctx context.Context, channelID int64, inviteLink, title, username string, addedBy int64) (verifiable bool, err error)
	Remove(ctx context.Context, channelID int64) error
	List(ctx context.Context) ([]*model.ForceChannel, error)
}

type channelUC struct {
	channels repository.ChannelRepository
	member   adapter.MembershipAdapter
	clock    Clock
	log      *zerolog.Logger
}

func NewChannelUseCase(channels repository.ChannelRepository, member adapter.MembershipAdapter, clock Clock, logger *zerolog.Logger) *channelUC {
	return &channelUC{channels: channels, member: member, clock: clock, log: logger}
}

func (u *channelUC) Add(ctx context.Context, channelID int64, inviteLink, title, username string, addedBy int64) (bool, error) {
	if channelID == 0 || addedBy <= 0 {
		return false, domain.ErrInvalidArgument
	}
	// Probe with the bot's own adminship query; any error means the bot
	// cannot currently verify membership for this channel.
	verifiable := true
	if _, err := u.member.ChatMember(ctx, channelID, addedBy); err != nil {
		verifiable = false
		u.log.Warn().Err(err).Int64("channel", channelID).Msg("force channel added but not verifiable")
	}
	ch := &model.ForceChannel{
		ChannelID:  channelID,
		InviteLink: inviteLink,
		Title:      title,
		Username:   username,
		Verifiable: verifiable,
		AddedBy:    addedBy,
		AddedAt:    u.clock.Now(),
	}
	if err := u.channels.Save(ctx, repository.NoTX, ch); err != nil {
		return false, err
	}
	return verifiable, nil
}

func (u *channelUC) Remove(ctx context.Context, channelID int64) error {
	return u.channels.Remove(ctx, repository.NoTX, channelID)
}

func (u *channelUC) List(ctx context.Context) ([]*model.ForceChannel, error) {
	return u.channels.ListAll(ctx, repository.NoTX)
}
