//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-file-gate/internal/domain"
	"telegram-file-gate/internal/domain/model"
	"telegram-file-gate/internal/usecase"
)

func TestRegistryUseCase_MintAndResolve(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("minted code resolves back to its target", func(t *testing.T) {
		links := newMemLinkRepo()
		uc := usecase.NewRegistryUseCase(links, newFakeClock(), logger)

		code, err := uc.Mint(ctx, model.TargetFile, "file-1", model.TierNormal, 42)
		if err != nil {
			t.Fatalf("Mint failed: %v", err)
		}
		if code == "" {
			t.Fatal("expected a non-empty code")
		}

		link, err := uc.Resolve(ctx, code)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if link.TargetKind != model.TargetFile || link.TargetID != "file-1" {
			t.Errorf("resolved to (%s, %s), want (file, file-1)", link.TargetKind, link.TargetID)
		}
		if link.Tier != model.TierNormal {
			t.Errorf("tier = %s, want normal", link.Tier)
		}
		if link.CreatedBy != 42 {
			t.Errorf("created_by = %d, want 42", link.CreatedBy)
		}
	})

	t.Run("unknown code yields not found", func(t *testing.T) {
		uc := usecase.NewRegistryUseCase(newMemLinkRepo(), newFakeClock(), logger)
		if _, err := uc.Resolve(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("pair mints two distinct codes with distinct tiers", func(t *testing.T) {
		links := newMemLinkRepo()
		uc := usecase.NewRegistryUseCase(links, newFakeClock(), logger)

		normal, premium, err := uc.MintPair(ctx, model.TargetBatch, "batch-1", 42)
		if err != nil {
			t.Fatalf("MintPair failed: %v", err)
		}
		if normal == premium {
			t.Fatal("normal and premium codes must differ")
		}
		nl, _ := uc.Resolve(ctx, normal)
		pl, _ := uc.Resolve(ctx, premium)
		if nl.Tier != model.TierNormal || pl.Tier != model.TierPremium {
			t.Errorf("tiers = (%s, %s), want (normal, premium)", nl.Tier, pl.Tier)
		}
		if nl.TargetID != pl.TargetID {
			t.Error("pair must share one target")
		}
	})

	t.Run("collision is retried with a fresh code", func(t *testing.T) {
		links := newMemLinkRepo()
		links.forcedCollisions = 2
		uc := usecase.NewRegistryUseCase(links, newFakeClock(), logger)

		code, err := uc.Mint(ctx, model.TargetFile, "file-1", model.TierNormal, 42)
		if err != nil {
			t.Fatalf("Mint should survive two collisions: %v", err)
		}
		if _, err := uc.Resolve(ctx, code); err != nil {
			t.Fatalf("retried code did not persist: %v", err)
		}
	})

	t.Run("persistent collisions eventually fail", func(t *testing.T) {
		links := newMemLinkRepo()
		links.forcedCollisions = 100
		uc := usecase.NewRegistryUseCase(links, newFakeClock(), logger)

		if _, err := uc.Mint(ctx, model.TargetFile, "file-1", model.TierNormal, 42); err == nil {
			t.Fatal("expected an error after exhausting retries")
		}
	})

	t.Run("mark used bumps counters", func(t *testing.T) {
		links := newMemLinkRepo()
		uc := usecase.NewRegistryUseCase(links, newFakeClock(), logger)

		code, _ := uc.Mint(ctx, model.TargetFile, "file-1", model.TierNormal, 42)
		if err := uc.MarkUsed(ctx, code); err != nil {
			t.Fatalf("MarkUsed failed: %v", err)
		}
		link, _ := uc.Resolve(ctx, code)
		if link.Uses != 1 {
			t.Errorf("uses = %d, want 1", link.Uses)
		}
		if link.LastUsedAt == nil {
			t.Error("last_used_at should be set")
		}
	})
}
