//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"telegram-file-gate/internal/infra/worker"
	"telegram-file-gate/internal/usecase"
)

func TestBroadcastUseCase(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("queues one send per known user", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		userUC := usecase.NewUserUseCase(users, mockTxManager{}, clock, logger)
		for _, id := range []int64{11, 22, 33} {
			if _, err := userUC.RegisterOrFetch(ctx, id, "u", ""); err != nil {
				t.Fatalf("register %d: %v", id, err)
			}
		}

		messenger := &fakeMessenger{}
		pool := worker.NewPool(2, logger)
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		pool.Start(runCtx)
		defer pool.Stop()

		uc := usecase.NewBroadcastUseCase(users, messenger, pool, logger)
		n, err := uc.BroadcastMessage(ctx, "maintenance tonight")
		if err != nil {
			t.Fatalf("broadcast: %v", err)
		}
		if n != 3 {
			t.Fatalf("recipients = %d, want 3", n)
		}

		deadline := time.After(5 * time.Second)
		for messenger.count() < 3 {
			select {
			case <-deadline:
				t.Fatalf("delivered %d of 3 messages before timeout", messenger.count())
			case <-time.After(10 * time.Millisecond):
			}
		}
	})

	t.Run("no users means nothing queued", func(t *testing.T) {
		messenger := &fakeMessenger{}
		pool := worker.NewPool(1, logger)
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		pool.Start(runCtx)
		defer pool.Stop()

		uc := usecase.NewBroadcastUseCase(newMemUserRepo(), messenger, pool, logger)
		n, err := uc.BroadcastMessage(ctx, "hello")
		if err != nil {
			t.Fatalf("broadcast: %v", err)
		}
		if n != 0 {
			t.Fatalf("recipients = %d, want 0", n)
		}
	})
}
