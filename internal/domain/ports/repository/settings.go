package repository

import "context"

// SettingsRepository is a process-wide key-value store for operator
// settings (caption template, auto-delete interval).
type SettingsRepository interface {
	Set(ctx context.Context, tx Tx, key, value string) error
	// Get returns "" (no error) when the key is absent.
	Get(ctx context.Context, tx Tx, key string) (string, error)
	Delete(ctx context.Context, tx Tx, key string) error
}
