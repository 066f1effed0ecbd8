package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallback routes inline-button presses. Every callback is answered so
// the client stops showing a spinner, even when the action fails.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn().Err(err).Msg("answer callback")
		}
	}()

	if cb.From == nil || cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, "recheck:"):
		code := strings.TrimPrefix(cb.Data, "recheck:")
		return b.deliver(ctx, chatID, cb.From, code)

	case cb.Data == "batch:done":
		reply, err := b.facade.HandleCustomBatchDone(ctx, cb.From.ID)
		if err != nil {
			b.log.Error().Err(err).Msg("finalize batch")
			return b.gw.SendMessage(ctx, chatID, "Could not build the batch. Try again.")
		}
		return b.gw.SendMessage(ctx, chatID, reply)

	case cb.Data == "batch:cancel":
		reply, err := b.facade.HandleCustomBatchCancel(ctx, cb.From.ID)
		if err != nil {
			b.log.Error().Err(err).Msg("cancel batch")
			return b.gw.SendMessage(ctx, chatID, "Could not cancel the batch.")
		}
		return b.gw.SendMessage(ctx, chatID, reply)
	}
	return nil
}
