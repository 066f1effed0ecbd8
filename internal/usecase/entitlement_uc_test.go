//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/usecase"
)

func TestEntitlementUseCase_Grant(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("grants stack from the current expiry", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		first, err := uc.Grant(ctx, 7, time.Hour)
		if err != nil {
			t.Fatalf("first grant: %v", err)
		}
		if want := clock.Now().Add(time.Hour); !first.Equal(want) {
			t.Errorf("first expiry = %v, want %v", first, want)
		}

		second, err := uc.Grant(ctx, 7, time.Hour)
		if err != nil {
			t.Fatalf("second grant: %v", err)
		}
		if want := clock.Now().Add(2 * time.Hour); !second.Equal(want) {
			t.Errorf("second expiry = %v, want %v (stacked)", second, want)
		}
	})

	t.Run("grant after lapse restarts from now", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		if _, err := uc.Grant(ctx, 7, time.Hour); err != nil {
			t.Fatalf("grant: %v", err)
		}
		clock.Advance(3 * time.Hour)

		until, err := uc.Grant(ctx, 7, time.Hour)
		if err != nil {
			t.Fatalf("grant: %v", err)
		}
		if want := clock.Now().Add(time.Hour); !until.Equal(want) {
			t.Errorf("expiry = %v, want %v (lapsed window ignored)", until, want)
		}
	})

	t.Run("grant creates the row for an unseen user", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		if _, err := uc.Grant(ctx, 1234, time.Hour); err != nil {
			t.Fatalf("grant: %v", err)
		}
		active, err := uc.IsActivePremium(ctx, 1234)
		if err != nil {
			t.Fatalf("IsActivePremium: %v", err)
		}
		if !active {
			t.Error("freshly granted user should be premium")
		}
	})

	t.Run("rejects non-positive input", func(t *testing.T) {
		uc := usecase.NewEntitlementUseCase(newMemUserRepo(), mockTxManager{}, newFakeClock(), ownerID, logger)
		if _, err := uc.Grant(ctx, 7, -time.Hour); err == nil {
			t.Error("negative duration must fail")
		}
		if _, err := uc.Grant(ctx, 0, time.Hour); err == nil {
			t.Error("zero user id must fail")
		}
	})
}

func TestEntitlementUseCase_IsActivePremium(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("unknown user is not premium", func(t *testing.T) {
		uc := usecase.NewEntitlementUseCase(newMemUserRepo(), mockTxManager{}, newFakeClock(), ownerID, logger)
		active, err := uc.IsActivePremium(ctx, 7)
		if err != nil {
			t.Fatalf("IsActivePremium: %v", err)
		}
		if active {
			t.Error("unknown user must not be premium")
		}
	})

	t.Run("expiry instant itself is no longer premium", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		if _, err := uc.Grant(ctx, 7, time.Hour); err != nil {
			t.Fatalf("grant: %v", err)
		}
		clock.Advance(time.Hour)
		active, _ := uc.IsActivePremium(ctx, 7)
		if active {
			t.Error("premium must end exactly at the expiry instant")
		}
	})

	t.Run("revoke clears the window", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		if _, err := uc.Grant(ctx, 7, time.Hour); err != nil {
			t.Fatalf("grant: %v", err)
		}
		if err := uc.Revoke(ctx, 7); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		active, _ := uc.IsActivePremium(ctx, 7)
		if active {
			t.Error("revoked user must not be premium")
		}
	})
}

func TestEntitlementUseCase_Roles(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("owner is always staff", func(t *testing.T) {
		uc := usecase.NewEntitlementUseCase(newMemUserRepo(), mockTxManager{}, newFakeClock(), ownerID, logger)
		if !uc.IsOwner(ownerID) {
			t.Error("owner id must be owner")
		}
		staff, err := uc.IsStaff(ctx, ownerID)
		if err != nil || !staff {
			t.Errorf("owner must be staff (staff=%v err=%v)", staff, err)
		}
	})

	t.Run("admin promotion and demotion", func(t *testing.T) {
		users := newMemUserRepo()
		clock := newFakeClock()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, clock, ownerID, logger)

		if staff, _ := uc.IsStaff(ctx, 7); staff {
			t.Fatal("fresh user must not be staff")
		}
		if err := uc.AddAdmin(ctx, 7); err != nil {
			t.Fatalf("AddAdmin: %v", err)
		}
		if staff, _ := uc.IsStaff(ctx, 7); !staff {
			t.Error("promoted user must be staff")
		}
		if err := uc.RemoveAdmin(ctx, 7); err != nil {
			t.Fatalf("RemoveAdmin: %v", err)
		}
		if staff, _ := uc.IsStaff(ctx, 7); staff {
			t.Error("demoted user must not be staff")
		}
	})

	t.Run("promotion does not grant premium", func(t *testing.T) {
		users := newMemUserRepo()
		uc := usecase.NewEntitlementUseCase(users, mockTxManager{}, newFakeClock(), ownerID, logger)
		if err := uc.AddAdmin(ctx, 7); err != nil {
			t.Fatalf("AddAdmin: %v", err)
		}
		active, _ := uc.IsActivePremium(ctx, 7)
		if active {
			t.Error("roles and entitlements are independent ledgers")
		}
	})
}

func TestUserModel_PremiumActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	u := &model.User{TelegramID: 7, PremiumUntil: &later}
	if !u.PremiumActive(now) {
		t.Error("future expiry must be active")
	}
	if u.PremiumActive(later) {
		t.Error("expiry instant must be inactive")
	}
	u.PremiumUntil = nil
	if u.PremiumActive(now) {
		t.Error("nil expiry must be inactive")
	}
}
