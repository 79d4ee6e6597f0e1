// Package fixedroute stores flat-price routes and matches trip requests against them.
package fixedroute

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripfare/tripfare/internal/address"
)

var (
	// ErrRouteNotFound is returned when a fixed route is not found.
	ErrRouteNotFound = errors.New("fixed route not found")

	// ErrInvalidRoute indicates a fixed route that can never be matched or priced.
	ErrInvalidRoute = errors.New("invalid fixed route")
)

// Route is a configured flat price between two places, given as administrative
// units, as free text, or both.
type Route struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Origin          address.UnitRef `json:"origin"`
	Destination     address.UnitRef `json:"destination"`
	OriginText      string          `json:"origin_text,omitempty"`
	DestinationText string          `json:"destination_text,omitempty"`
	Price           float64         `json:"price"`
	Active          bool            `json:"active"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewID returns a fresh route ID.
func NewID() string {
	return "fr_" + uuid.New().String()[:22]
}

// HasUnits reports whether both ends are administrative units.
func (r *Route) HasUnits() bool {
	return !r.Origin.IsZero() && !r.Destination.IsZero()
}

// HasText reports whether both ends are free text.
func (r *Route) HasText() bool {
	return strings.TrimSpace(r.OriginText) != "" && strings.TrimSpace(r.DestinationText) != ""
}

// Specificity is the administrative level both ends are configured at.
func (r *Route) Specificity() address.Level {
	if !r.HasUnits() {
		return address.LevelNone
	}
	return r.Origin.Level()
}

// Validate checks that the route is matchable and has a usable price.
func (r *Route) Validate() error {
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) || r.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidRoute)
	}
	if !r.HasUnits() && !r.HasText() {
		return fmt.Errorf("%w: origin and destination need administrative units or text", ErrInvalidRoute)
	}
	if r.Origin.IsZero() != r.Destination.IsZero() {
		return fmt.Errorf("%w: administrative units must be set on both ends", ErrInvalidRoute)
	}
	if r.HasUnits() {
		for _, ref := range []address.UnitRef{r.Origin, r.Destination} {
			if ref.WardCode != "" && ref.DistrictCode == "" {
				return fmt.Errorf("%w: ward %s has no district", ErrInvalidRoute, ref.WardCode)
			}
		}
		if r.Origin.Level() != r.Destination.Level() {
			return fmt.Errorf("%w: origin is %s level but destination is %s level",
				ErrInvalidRoute, r.Origin.Level(), r.Destination.Level())
		}
	}
	return nil
}

func (r *Route) clone() *Route {
	cp := *r
	return &cp
}
