package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-file-gate/internal/domain/ports/adapter"
)

type pendingDelete struct {
	chatID    int64
	messageID int
	due       time.Time
}

// CleanupWorker deletes delivered messages after the operator-configured
// interval. The queue lives in memory; entries lost on restart simply stay
// in the chat, which is acceptable for this feature.
type CleanupWorker struct {
	interval time.Duration
	delivery adapter.DeliveryAdapter
	log      *zerolog.Logger

	mu    sync.Mutex
	queue []pendingDelete
}

func NewCleanupWorker(interval time.Duration, delivery adapter.DeliveryAdapter, logger *zerolog.Logger) *CleanupWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	compLog := logger.With().Str("component", "CleanupWorker").Logger()
	return &CleanupWorker{
		interval: interval,
		delivery: delivery,
		log:      &compLog,
	}
}

// Schedule queues a message for deletion at due.
func (w *CleanupWorker) Schedule(chatID int64, messageID int, due time.Time) {
	w.mu.Lock()
	w.queue = append(w.queue, pendingDelete{chatID: chatID, messageID: messageID, due: due})
	w.mu.Unlock()
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting cleanup worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping cleanup worker")
			return ctx.Err()
		case now := <-ticker.C:
			w.sweep(ctx, now)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due, rest []pendingDelete
	for _, p := range w.queue {
		if !p.due.After(now) {
			due = append(due, p)
		} else {
			rest = append(rest, p)
		}
	}
	w.queue = rest
	w.mu.Unlock()

	for _, p := range due {
		if err := w.delivery.DeleteMessage(ctx, p.chatID, p.messageID); err != nil {
			w.log.Warn().Err(err).Int64("chat_id", p.chatID).Int("message_id", p.messageID).Msg("delete failed")
		}
	}
	if len(due) > 0 {
		w.log.Debug().Int("count", len(due)).Msg("messages deleted")
	}
}
