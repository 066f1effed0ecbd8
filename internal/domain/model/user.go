package model

import (
	"time"

	"telegram-file-gate/internal/domain"
)

// User is a domain entity representing a Telegram user in our system.
// PremiumUntil is nil until the user is granted premium for the first time.
type User struct {
	TelegramID   int64
	FirstName    string
	Username     string
	PremiumUntil *time.Time
	IsAdmin      bool
	RegisteredAt time.Time
	LastSeenAt   time.Time
}

func NewUser(tgID int64, firstName, username string, now time.Time) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		TelegramID:   tgID,
		FirstName:    firstName,
		Username:     username,
		RegisteredAt: now,
		LastSeenAt:   now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }

// Touch updates the last-seen instant.
func (u *User) Touch(now time.Time) { u.LastSeenAt = now }

// PremiumActive reports whether the user's premium window covers now.
func (u *User) PremiumActive(now time.Time) bool {
	return u != nil && u.PremiumUntil != nil && u.PremiumUntil.After(now)
}
