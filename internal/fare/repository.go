package fare

import "context"

// Repository stores named fare configurations. The quoting engine only reads it.
type Repository interface {
	// Get returns the configuration or ErrConfigNotFound.
	Get(ctx context.Context, name string) (*NamedConfig, error)

	// List returns every configuration ordered by name.
	List(ctx context.Context) ([]*NamedConfig, error)

	// Upsert validates and stores cfg.
	Upsert(ctx context.Context, cfg *NamedConfig) error

	// Delete removes a configuration or returns ErrConfigNotFound.
	Delete(ctx context.Context, name string) error
}
