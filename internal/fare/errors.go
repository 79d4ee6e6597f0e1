package fare

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDistance indicates a distance the calculator cannot price.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidConfig indicates a malformed fare configuration.
	ErrInvalidConfig = errors.New("invalid fare config")

	// ErrConfigNotFound is returned when a named configuration does not exist.
	ErrConfigNotFound = errors.New("fare config not found")
)

// ConfigError describes which field of a configuration is malformed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func invalidDistance(km float64) error {
	return fmt.Errorf("%w: %v km", ErrInvalidDistance, km)
}
