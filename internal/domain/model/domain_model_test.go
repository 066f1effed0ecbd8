//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"telegram-file-gate/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		user, err := NewUser(12345, "Ada", "ada", testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.TelegramID != 12345 || user.FirstName != "Ada" || user.Username != "ada" {
			t.Errorf("unexpected user: %+v", user)
		}
		if !user.RegisteredAt.Equal(testNow) || !user.LastSeenAt.Equal(testNow) {
			t.Errorf("timestamps not initialized: %+v", user)
		}
		if user.IsAdmin || user.PremiumUntil != nil {
			t.Error("expected a new user to start without roles")
		}
	})

	t.Run("should fail with invalid telegram ID", func(t *testing.T) {
		user, err := NewUser(0, "Ada", "ada", testNow)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if user != nil {
			t.Error("expected user to be nil on error")
		}
	})
}

func TestUserPremiumActive(t *testing.T) {
	user, _ := NewUser(12345, "Ada", "ada", testNow)

	t.Run("nil expiry means not premium", func(t *testing.T) {
		if user.PremiumActive(testNow) {
			t.Error("expected no premium without an expiry")
		}
	})

	t.Run("future expiry is active", func(t *testing.T) {
		until := testNow.Add(time.Hour)
		user.PremiumUntil = &until
		if !user.PremiumActive(testNow) {
			t.Error("expected premium with a future expiry")
		}
	})

	t.Run("the expiry instant itself is inactive", func(t *testing.T) {
		until := testNow
		user.PremiumUntil = &until
		if user.PremiumActive(testNow) {
			t.Error("expected premium to be over exactly at the expiry instant")
		}
	})
}

// --- Link Code Tests ---

func TestNewLinkCode(t *testing.T) {
	t.Run("should create a valid code", func(t *testing.T) {
		link, err := NewLinkCode("abc123", TargetFile, "file-1", TierNormal, 99, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if link.Uses != 0 || link.Removed || link.LastUsedAt != nil {
			t.Errorf("fresh code carries usage state: %+v", link)
		}
	})

	t.Run("should reject bad input", func(t *testing.T) {
		cases := []struct {
			name string
			fn   func() (*LinkCode, error)
		}{
			{"empty code", func() (*LinkCode, error) { return NewLinkCode("", TargetFile, "f", TierNormal, 99, testNow) }},
			{"empty target", func() (*LinkCode, error) { return NewLinkCode("c", TargetFile, "", TierNormal, 99, testNow) }},
			{"bad kind", func() (*LinkCode, error) { return NewLinkCode("c", TargetKind("x"), "f", TierNormal, 99, testNow) }},
			{"bad tier", func() (*LinkCode, error) { return NewLinkCode("c", TargetFile, "f", LinkTier("gold"), 99, testNow) }},
			{"no creator", func() (*LinkCode, error) { return NewLinkCode("c", TargetFile, "f", TierNormal, 0, testNow) }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := tc.fn(); !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
			})
		}
	})
}

// --- Content Item Tests ---

func TestNewContentItem(t *testing.T) {
	t.Run("should create a valid item", func(t *testing.T) {
		item, err := NewContentItem("01H", "tg-1", "uniq-1", FileKindVideo, "a.mp4", 99, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if item.Kind != FileKindVideo || !item.AddedAt.Equal(testNow) {
			t.Errorf("unexpected item: %+v", item)
		}
	})

	t.Run("should require id, handle, kind and owner", func(t *testing.T) {
		if _, err := NewContentItem("", "tg-1", "", FileKindVideo, "", 99, testNow); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty id: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := NewContentItem("01H", "", "", FileKindVideo, "", 99, testNow); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty handle: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := NewContentItem("01H", "tg-1", "", FileKindVideo, "", 0, testNow); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("no owner: expected ErrInvalidArgument, got %v", err)
		}
	})
}

// --- Batch Tests ---

func TestNewRangeBatch(t *testing.T) {
	t.Run("expands an inclusive range in ascending order", func(t *testing.T) {
		b, err := NewRangeBatch("01H", -100200, 5, 8, 200, 99, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if b.Kind != BatchKindRange || len(b.Items) != 4 {
			t.Fatalf("unexpected batch: %+v", b)
		}
		for i, it := range b.Items {
			if it.Kind != DeliveryKindPost || it.ChannelID != -100200 || it.MessageID != 5+i {
				t.Errorf("item %d = %+v", i, it)
			}
		}
	})

	t.Run("start equal to end yields one item", func(t *testing.T) {
		b, err := NewRangeBatch("01H", -100200, 5, 5, 200, 99, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if len(b.Items) != 1 {
			t.Errorf("expected one item, got %d", len(b.Items))
		}
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		if _, err := NewRangeBatch("01H", -100200, 8, 5, 200, 99, testNow); !errors.Is(err, domain.ErrRangeInvalid) {
			t.Errorf("expected ErrRangeInvalid, got %v", err)
		}
	})

	t.Run("over-limit range is rejected and the limit itself allowed", func(t *testing.T) {
		if _, err := NewRangeBatch("01H", -100200, 1, 11, 10, 99, testNow); !errors.Is(err, domain.ErrRangeTooLarge) {
			t.Errorf("expected ErrRangeTooLarge, got %v", err)
		}
		if b, err := NewRangeBatch("01H", -100200, 1, 10, 10, 99, testNow); err != nil || len(b.Items) != 10 {
			t.Errorf("limit boundary: got (%v, %v)", b, err)
		}
	})

	t.Run("non-positive start is rejected", func(t *testing.T) {
		if _, err := NewRangeBatch("01H", -100200, 0, 5, 200, 99, testNow); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestNewCustomBatch(t *testing.T) {
	t.Run("freezes the submission order", func(t *testing.T) {
		files := make([]*ContentItem, 0, 3)
		for _, id := range []string{"b", "a", "c"} {
			f, err := NewContentItem(id, "tg-"+id, "uniq-"+id, FileKindDocument, id, 99, testNow)
			if err != nil {
				t.Fatalf("new item: %v", err)
			}
			files = append(files, f)
		}
		b, err := NewCustomBatch("01H", files, 99, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if b.Kind != BatchKindCustom {
			t.Errorf("kind = %s", b.Kind)
		}
		for i, it := range b.Items {
			if it.Kind != DeliveryKindFile || it.File == nil || it.File.ID != files[i].ID {
				t.Errorf("item %d = %+v", i, it)
			}
		}
	})

	t.Run("an empty file list is rejected", func(t *testing.T) {
		if _, err := NewCustomBatch("01H", nil, 99, testNow); !errors.Is(err, domain.ErrEmptySession) {
			t.Errorf("expected ErrEmptySession, got %v", err)
		}
	})
}

// --- Token Tests ---

func TestNewRedemptionToken(t *testing.T) {
	t.Run("should create an unused token", func(t *testing.T) {
		tok, err := NewRedemptionToken("tok-1", 99, 30*24*time.Hour, testNow)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if tok.Used() || tok.UsedAt != nil {
			t.Errorf("fresh token carries usage state: %+v", tok)
		}
	})

	t.Run("should reject non-positive grants", func(t *testing.T) {
		if _, err := NewRedemptionToken("tok-1", 99, 0, testNow); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
