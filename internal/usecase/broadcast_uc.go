// File: internal/usecase/broadcast_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain/ports/adapter"
	"telegram-file-gate/internal/domain/ports/repository"
	"telegram-file-gate/internal/infra/worker"
)

type BroadcastUseCase interface {
	// BroadcastMessage queues message delivery to every known user and
	// returns the recipient count immediately.
	BroadcastMessage(ctx context.Context, message string) (int, error)
}

type broadcastUC struct {
	users      repository.UserRepository
	bot        adapter.MessengerAdapter
	workerPool *worker.Pool
	log        *zerolog.Logger
}

func NewBroadcastUseCase(
	users repository.UserRepository,
	bot adapter.MessengerAdapter,
	pool *worker.Pool,
	logger *zerolog.Logger,
) BroadcastUseCase {
	return &broadcastUC{users: users, bot: bot, workerPool: pool, log: logger}
}

func (uc *broadcastUC) BroadcastMessage(ctx context.Context, message string) (int, error) {
	ids, err := uc.users.ListIDs(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to fetch user ids for broadcast")
		return 0, err
	}

	// Throttle to respect Telegram's API limits (approx. 30 messages/sec)
	throttle := time.NewTicker(time.Second / 25)

	go func() {
		defer throttle.Stop()
		uc.log.Info().Int("user_count", len(ids)).Msg("starting broadcast job")
		for _, id := range ids {
			<-throttle.C
			task := uc.createSendTask(id, message)
			if err := uc.workerPool.Submit(task); err != nil {
				uc.log.Warn().Err(err).Int64("tg_id", id).Msg("failed to submit broadcast task")
			}
		}
		uc.log.Info().Msg("broadcast job finished queuing all tasks")
	}()

	return len(ids), nil
}

func (uc *broadcastUC) createSendTask(telegramID int64, message string) worker.Task {
	return func(ctx context.Context) error {
		return uc.bot.SendMessage(ctx, telegramID, message)
	}
}
