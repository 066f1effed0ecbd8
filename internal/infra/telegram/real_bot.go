package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-file-gate/internal/application"
	"telegram-file-gate/internal/config"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/infra/logging"
	"telegram-file-gate/internal/infra/sched"
	"telegram-file-gate/internal/usecase"
)

// Bot polls Telegram for updates and routes them through the facade.
// Updates are processed concurrently by a fixed set of workers.
type Bot struct {
	api     *tgbotapi.BotAPI
	gw      *Gateway
	cfg     *config.BotConfig
	facade  *application.BotFacade
	cleanup *sched.CleanupWorker
	log     *zerolog.Logger

	routes map[string]commandRoute

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewBot(
	api *tgbotapi.BotAPI,
	gw *Gateway,
	cfg *config.BotConfig,
	facade *application.BotFacade,
	cleanup *sched.CleanupWorker,
	logger *zerolog.Logger,
) (*Bot, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	botLog := logger.With().Str("component", "Bot").Logger()
	b := &Bot{
		api:           api,
		gw:            gw,
		cfg:           cfg,
		facade:        facade,
		cleanup:       cleanup,
		log:           &botLog,
		updateWorkers: workers,
	}
	b.routes = b.buildRoutes()
	return b, nil
}

// StartPolling runs until ctx is canceled.
func (b *Bot) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.updateWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := b.handleUpdate(ctx, update); err != nil {
						b.log.Error().Err(err).Int("worker", workerID).Msg("handle update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	b.api.StopReceivingUpdates()
	wg.Wait()
	return nil
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || !msg.Chat.IsPrivate() {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)

	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}

	if kind, fileID, uniqueID, name, ok := extractFile(msg); ok {
		return b.handleIncomingFile(ctx, msg, kind, fileID, uniqueID, name)
	}

	return b.gw.SendMessage(ctx, msg.Chat.ID, "Send me a link you received, or /help for commands.")
}

// handleIncomingFile routes staff uploads into minting; anyone else gets a
// polite refusal.
func (b *Bot) handleIncomingFile(ctx context.Context, msg *tgbotapi.Message, kind model.FileKind, fileID, uniqueID, name string) error {
	staff, err := b.facade.IsStaff(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if !staff {
		return b.gw.SendMessage(ctx, msg.Chat.ID, "I only accept files from admins.")
	}
	reply, err := b.facade.HandleAdminFile(ctx, msg.From.ID, fileID, uniqueID, kind, name)
	if err != nil {
		b.log.Error().Err(err).Msg("handle admin file")
		return b.gw.SendMessage(ctx, msg.Chat.ID, "Something went wrong storing that file.")
	}
	return b.gw.SendMessage(ctx, msg.Chat.ID, reply)
}

// deliver runs the full deep-link flow for one code and answers the chat
// according to the decision.
func (b *Bot) deliver(ctx context.Context, chatID int64, from *tgbotapi.User, code string) error {
	ctx = logging.WithLinkCode(ctx, code)

	dec, err := b.facade.ResolveAccess(ctx, code, from.ID, from.FirstName, from.UserName)
	if err != nil {
		b.log.Error().Err(err).Msg("resolve access")
		return b.gw.SendMessage(ctx, chatID, "Something went wrong. Try the link again.")
	}

	switch dec.Kind {
	case usecase.DecisionNotFound:
		return b.gw.SendMessage(ctx, chatID, "This link does not exist or has been removed.")
	case usecase.DecisionMembershipRequired:
		return b.promptJoin(ctx, chatID, code, dec.MissingChannels)
	case usecase.DecisionPremiumRequired:
		return b.gw.SendMessage(ctx, chatID, "This link is for premium users. Redeem a premium code with /redeem <code>.")
	}

	caption, err := b.facade.Caption(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("load caption")
	}
	autoDelete, err := b.facade.AutoDelete(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("load auto-delete interval")
	}

	var sent []int
	for _, item := range dec.Items {
		var msgID int
		switch item.Kind {
		case model.DeliveryKindPost:
			msgID, err = b.gw.CopyPost(ctx, chatID, item.ChannelID, item.MessageID)
		default:
			msgID, err = b.gw.DeliverFile(ctx, chatID, item.File, caption)
		}
		if err != nil {
			b.log.Error().Err(err).Msg("deliver item")
			continue
		}
		sent = append(sent, msgID)
	}
	if len(sent) == 0 {
		return b.gw.SendMessage(ctx, chatID, "Delivery failed. Try the link again later.")
	}

	if err := b.facade.MarkDelivered(ctx, code); err != nil {
		b.log.Warn().Err(err).Msg("mark delivered")
	}

	if autoDelete > 0 && b.cleanup != nil {
		due := time.Now().Add(autoDelete)
		for _, id := range sent {
			b.cleanup.Schedule(chatID, id, due)
		}
		return b.gw.SendMessage(ctx, chatID,
			fmt.Sprintf("These files will be deleted in %s. Save them somewhere else.", autoDelete))
	}
	return nil
}

// promptJoin lists the channels the user still has to join, with a recheck
// button that re-runs the decision in place.
func (b *Bot) promptJoin(ctx context.Context, chatID int64, code string, missing []*model.ForceChannel) error {
	rows := make([][]adapter.InlineButton, 0, len(missing)+1)
	for _, ch := range missing {
		label := ch.Title
		if label == "" {
			label = "Join channel"
		}
		url := ch.InviteLink
		if url == "" && ch.Username != "" {
			url = "https://t.me/" + ch.Username
		}
		if url == "" {
			continue
		}
		rows = append(rows, []adapter.InlineButton{{Text: label, URL: url}})
	}
	rows = append(rows, []adapter.InlineButton{{Text: "I joined, check again", Data: "recheck:" + code}})
	return b.gw.SendButtons(ctx, chatID, "Join the channel(s) below first, then press the button.", rows)
}

// extractFile pulls the deliverable attachment out of a message, if any.
func extractFile(msg *tgbotapi.Message) (kind model.FileKind, fileID, uniqueID, name string, ok bool) {
	switch {
	case msg.Document != nil:
		return model.FileKindDocument, msg.Document.FileID, msg.Document.FileUniqueID, msg.Document.FileName, true
	case msg.Video != nil:
		return model.FileKindVideo, msg.Video.FileID, msg.Video.FileUniqueID, msg.Video.FileName, true
	case msg.Audio != nil:
		return model.FileKindAudio, msg.Audio.FileID, msg.Audio.FileUniqueID, msg.Audio.FileName, true
	case len(msg.Photo) > 0:
		// Telegram sends several sizes; the last one is the original.
		p := msg.Photo[len(msg.Photo)-1]
		return model.FileKindPhoto, p.FileID, p.FileUniqueID, "", true
	}
	return "", "", "", "", false
}
