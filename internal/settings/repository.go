package settings

import (
	"context"
	"errors"
)

// ErrSettingNotFound is returned when no value is stored under a key.
var ErrSettingNotFound = errors.New("setting not found")

// Repository defines storage for settings.
type Repository interface {
	// Get retrieves a single setting by key.
	Get(ctx context.Context, key string) (*Setting, error)

	// All retrieves every stored setting keyed by name.
	All(ctx context.Context) (map[string]*Setting, error)

	// Set creates or updates the given settings atomically.
	Set(ctx context.Context, settings ...*Setting) error

	// Delete removes a setting so that its default applies again.
	Delete(ctx context.Context, key string) error
}
