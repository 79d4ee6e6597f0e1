// Package trip holds the value types shared by the quoting pipeline:
// the caller's request and the resolved distance estimate.
package trip

import (
	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/geo"
)

// Method records which source produced a distance.
type Method string

const (
	MethodProvided        Method = "provided"
	MethodRoutingProvider Method = "routing_provider"
	MethodTerrainEstimate Method = "terrain_estimate"
)

// Request is a trip to quote. Origin and Destination are used only as a pair.
type Request struct {
	Origin      *geo.Point `json:"origin,omitempty"`
	Destination *geo.Point `json:"destination,omitempty"`

	OriginAddress      string `json:"origin_address,omitempty"`
	DestinationAddress string `json:"destination_address,omitempty"`

	// Administrative units, when the caller picked them from the address hierarchy.
	OriginUnit      address.UnitRef `json:"origin_unit"`
	DestinationUnit address.UnitRef `json:"destination_unit"`

	// DistanceKm overrides resolution when positive.
	DistanceKm float64 `json:"distance_km,omitempty"`
	// DurationMinutes accompanies a supplied distance.
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
}

// HasCoordinates reports whether both endpoints carry coordinates.
func (r Request) HasCoordinates() bool {
	return r.Origin != nil && r.Destination != nil
}

// HasAddresses reports whether both endpoints carry free text.
func (r Request) HasAddresses() bool {
	return r.OriginAddress != "" && r.DestinationAddress != ""
}

// HasUnits reports whether both endpoints name at least a province.
func (r Request) HasUnits() bool {
	return !r.OriginUnit.IsZero() && !r.DestinationUnit.IsZero()
}

// HasSuppliedDistance reports whether the caller already knows the distance.
func (r Request) HasSuppliedDistance() bool {
	return r.DistanceKm > 0
}

// RouteInfo is the audit record attached to an estimate.
type RouteInfo struct {
	Summary      string   `json:"summary,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	DistanceText string   `json:"distance_text,omitempty"`
	DurationText string   `json:"duration_text,omitempty"`

	// Provider fields.
	Provider               string `json:"provider,omitempty"`
	ProviderDistanceMeters int    `json:"provider_distance_meters,omitempty"`
	StepsCount             int    `json:"steps_count,omitempty"`

	// Terrain estimate fields.
	StraightDistanceKm float64 `json:"straight_distance_km,omitempty"`
	Multiplier         float64 `json:"multiplier,omitempty"`
	SpeedKmh           float64 `json:"speed_kmh,omitempty"`
	Band               string  `json:"band,omitempty"`
	AreaType           string  `json:"area_type,omitempty"`

	// FallbackReason explains why the provider answer was not used.
	FallbackReason string `json:"fallback_reason,omitempty"`

	// FallbackCode is FallbackReason reduced to a short fixed code.
	FallbackCode string `json:"fallback_code,omitempty"`
}

// Estimate is a resolved distance. It is built once per request and not shared.
type Estimate struct {
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes float64   `json:"duration_minutes"`
	DurationKnown   bool      `json:"duration_known"`
	Method          Method    `json:"method"`
	RouteInfo       RouteInfo `json:"route_info"`
}
