package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/fare"
)

// ActiveConfig names the fare configuration used when a request picks none.
type ActiveConfig interface {
	ActiveFareConfig(ctx context.Context) string
}

// CatalogConfig holds configuration for a Catalog.
type CatalogConfig struct {
	Configs fare.Repository
	// Active is optional; without it the default configuration name is used.
	Active ActiveConfig
	Logger zerolog.Logger
}

// Catalog loads fare configurations by name and scales them per vehicle.
type Catalog struct {
	configs fare.Repository
	active  ActiveConfig
	logger  zerolog.Logger
}

// NewCatalog creates a Catalog.
func NewCatalog(cfg CatalogConfig) *Catalog {
	return &Catalog{configs: cfg.Configs, active: cfg.Active, logger: cfg.Logger}
}

// Selection is a loaded configuration ready to price with.
type Selection struct {
	Name    string
	Vehicle fare.VehicleClass
	Config  fare.Config
}

// Select loads the named configuration, or the active one when name is empty,
// and applies the vehicle multiplier. When the active configuration is
// missing from the store, the built-in default applies. An explicit name that
// does not exist is an error wrapping fare.ErrConfigNotFound.
func (c *Catalog) Select(ctx context.Context, name string, vehicle fare.VehicleClass) (*Selection, error) {
	explicit := name != ""
	if !explicit {
		name = fare.DefaultConfigName
		if c.active != nil {
			name = c.active.ActiveFareConfig(ctx)
		}
	}

	var named *fare.NamedConfig
	if c.configs != nil {
		var err error
		named, err = c.configs.Get(ctx, name)
		switch {
		case err == nil:
		case explicit && errors.Is(err, fare.ErrConfigNotFound):
			return nil, fmt.Errorf("%w: %s", fare.ErrConfigNotFound, name)
		case explicit, errors.Is(err, fare.ErrInvalidConfig):
			return nil, fmt.Errorf("load fare config %s: %w", name, err)
		default:
			c.logger.Warn().Err(err).Str("fare_config", name).Msg("active fare config unavailable, using built-in default")
		}
	}

	if named == nil {
		flat := fare.DefaultFlat
		named = &fare.NamedConfig{Name: fare.DefaultConfigName, Model: fare.ModelFlat, Flat: &flat}
	}

	if vehicle == "" {
		vehicle = fare.Vehicle4Seats
	}
	return &Selection{
		Name:    named.Name,
		Vehicle: vehicle,
		Config:  fare.ScaleFor(named.Config(), vehicle),
	}, nil
}
