// File: internal/usecase/settings_uc.go
package usecase

import (
	"context"
	"strconv"
	"time"

	"telegram-file-gate/internal/domain/ports/repository"
)

// Settings keys.
const (
	settingCaption    = "caption"
	settingAutoDelete = "autodelete_seconds"
)

// Compile-time check
var _ SettingsUseCase = (*settingsUC)(nil)

// SettingsUseCase manages the process-wide caption template and the
// auto-delete interval applied to link-delivered content.
type SettingsUseCase interface {
	SetCaption(ctx context.Context, text string) error
	// Caption returns "" when unset.
	Caption(ctx context.Context) (string, error)
	RemoveCaption(ctx context.Context) error

	// SetAutoDelete stores the delete-after interval; d <= 0 disables it.
	SetAutoDelete(ctx context.Context, d time.Duration) error
	// AutoDelete returns 0 when disabled or unset (the default).
	AutoDelete(ctx context.Context) (time.Duration, error)
}

type settingsUC struct {
	settings repository.SettingsRepository
}

func NewSettingsUseCase(settings repository.SettingsRepository) *settingsUC {
	return &settingsUC{settings: settings}
}

func (u *settingsUC) SetCaption(ctx context.Context, text string) error {
	return u.settings.Set(ctx, repository.NoTX, settingCaption, text)
}

func (u *settingsUC) Caption(ctx context.Context) (string, error) {
	return u.settings.Get(ctx, repository.NoTX, settingCaption)
}

func (u *settingsUC) RemoveCaption(ctx context.Context) error {
	return u.settings.Delete(ctx, repository.NoTX, settingCaption)
}

func (u *settingsUC) SetAutoDelete(ctx context.Context, d time.Duration) error {
	secs := int64(0)
	if d > 0 {
		secs = int64(d / time.Second)
	}
	return u.settings.Set(ctx, repository.NoTX, settingAutoDelete, strconv.FormatInt(secs, 10))
}

func (u *settingsUC) AutoDelete(ctx context.Context) (time.Duration, error) {
	raw, err := u.settings.Get(ctx, repository.NoTX, settingAutoDelete)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return 0, nil
	}
	return time.Duration(secs) * time.Second, nil
}
