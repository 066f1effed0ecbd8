package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/infra/metrics"
)

// Compile-time checks
var (
	_ adapter.MessengerAdapter  = (*Gateway)(nil)
	_ adapter.MembershipAdapter = (*Gateway)(nil)
	_ adapter.DeliveryAdapter   = (*Gateway)(nil)
)

// Gateway is the outbound side of the bot: messaging, membership queries and
// content delivery over one shared Bot API client.
type Gateway struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewGateway(bot *tgbotapi.BotAPI, logger *zerolog.Logger) *Gateway {
	return &Gateway{bot: bot, log: logger}
}

func (g *Gateway) SendMessage(ctx context.Context, telegramID int64, text string) error {
	msg := tgbotapi.NewMessage(telegramID, text)
	_, err := g.bot.Send(msg)
	return err
}

func (g *Gateway) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	msg := tgbotapi.NewMessage(telegramID, text)
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			switch {
			case b.URL != "":
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			default:
				btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		kb = append(kb, btns)
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kb...)
	_, err := g.bot.Send(msg)
	return err
}

// ChatMember maps the Bot API member status onto the three-valued outcome.
// "left" and "kicked" are definite denials; everything else that the API
// reports for a present user counts as membership.
func (g *Gateway) ChatMember(ctx context.Context, channelID, userID int64) (model.MembershipStatus, error) {
	member, err := g.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: userID,
		},
	})
	if err != nil {
		return model.MembershipUnknown, fmt.Errorf("get chat member %d/%d: %w", channelID, userID, err)
	}
	switch member.Status {
	case "left", "kicked":
		return model.MembershipNotMember, nil
	case "creator", "administrator", "member", "restricted":
		return model.MembershipMember, nil
	default:
		return model.MembershipUnknown, nil
	}
}

func (g *Gateway) IsChannelAdmin(ctx context.Context, channelID, userID int64) (bool, error) {
	member, err := g.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: channelID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member %d/%d: %w", channelID, userID, err)
	}
	return member.Status == "creator" || member.Status == "administrator", nil
}

// DeliverFile sends the stored item by its platform file id, picking the
// send method that matches how the file was originally received.
func (g *Gateway) DeliverFile(ctx context.Context, chatID int64, item *model.ContentItem, caption string) (int, error) {
	start := time.Now()

	var c tgbotapi.Chattable
	fileID := tgbotapi.FileID(item.TGFileID)
	switch item.Kind {
	case model.FileKindVideo:
		v := tgbotapi.NewVideo(chatID, fileID)
		v.Caption = caption
		c = v
	case model.FileKindAudio:
		a := tgbotapi.NewAudio(chatID, fileID)
		a.Caption = caption
		c = a
	case model.FileKindPhoto:
		p := tgbotapi.NewPhoto(chatID, fileID)
		p.Caption = caption
		c = p
	default:
		d := tgbotapi.NewDocument(chatID, fileID)
		d.Caption = caption
		c = d
	}

	sent, err := g.bot.Send(c)
	metrics.ObserveDelivery(string(item.Kind), int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return 0, fmt.Errorf("deliver %s to %d: %w", item.Kind, chatID, err)
	}
	return sent.MessageID, nil
}

// CopyPost re-sends a channel post into the chat without a forward header.
func (g *Gateway) CopyPost(ctx context.Context, chatID, fromChannelID int64, messageID int) (int, error) {
	start := time.Now()
	cfg := tgbotapi.NewCopyMessage(chatID, fromChannelID, messageID)
	res, err := g.bot.CopyMessage(cfg)
	metrics.ObserveDelivery("post", int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return 0, fmt.Errorf("copy post %d from %d: %w", messageID, fromChannelID, err)
	}
	return res.MessageID, nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := g.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}
