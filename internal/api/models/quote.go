package models

// TripInput describes the two ends of a trip. Any of coordinates, free-text
// addresses, administrative units or a known distance may be given.
type TripInput struct {
	Origin      *Point `json:"origin,omitempty"`
	Destination *Point `json:"destination,omitempty"`

	OriginAddress      string `json:"originAddress,omitempty"`
	DestinationAddress string `json:"destinationAddress,omitempty"`

	OriginUnit      *UnitRef `json:"originUnit,omitempty"`
	DestinationUnit *UnitRef `json:"destinationUnit,omitempty"`

	DistanceKm      *float64 `json:"distanceKm,omitempty"`
	DurationMinutes *float64 `json:"durationMinutes,omitempty"`
}

// QuoteRequest is the body of POST /v1/quotes.
type QuoteRequest struct {
	TripInput

	// FareConfig names a stored fare configuration. Empty uses the active one.
	FareConfig   string `json:"fareConfig,omitempty"`
	VehicleClass string `json:"vehicleClass,omitempty"`
}

// TripQuote is a priced trip.
type TripQuote struct {
	Price        float64          `json:"price"`
	Currency     string           `json:"currency"`
	Method       string           `json:"method"`
	FareConfig   string           `json:"fareConfig,omitempty"`
	VehicleClass string           `json:"vehicleClass,omitempty"`
	Estimate     *Estimate        `json:"estimate,omitempty"`
	Breakdown    *FareBreakdown   `json:"breakdown,omitempty"`
	FixedRoute   *FixedRouteMatch `json:"fixedRoute,omitempty"`
	QuotedAt     Timestamp        `json:"quotedAt"`
}

// Estimate is a resolved trip distance with its provenance.
type Estimate struct {
	DistanceKm      float64   `json:"distanceKm"`
	DurationMinutes float64   `json:"durationMinutes"`
	DurationKnown   bool      `json:"durationKnown"`
	Method          string    `json:"method"`
	RouteInfo       RouteInfo `json:"routeInfo"`
}

// RouteInfo is the audit record of a distance resolution.
type RouteInfo struct {
	Summary                string   `json:"summary,omitempty"`
	Warnings               []string `json:"warnings,omitempty"`
	DistanceText           string   `json:"distanceText,omitempty"`
	DurationText           string   `json:"durationText,omitempty"`
	Provider               string   `json:"provider,omitempty"`
	ProviderDistanceMeters int      `json:"providerDistanceMeters,omitempty"`
	StepsCount             int      `json:"stepsCount,omitempty"`
	StraightDistanceKm     float64  `json:"straightDistanceKm,omitempty"`
	Multiplier             float64  `json:"multiplier,omitempty"`
	SpeedKmh               float64  `json:"speedKmh,omitempty"`
	Band                   string   `json:"band,omitempty"`
	AreaType               string   `json:"areaType,omitempty"`
	FallbackReason         string   `json:"fallbackReason,omitempty"`
}

// FareBreakdown explains a metered price.
type FareBreakdown struct {
	Model         string             `json:"model"`
	DistanceKm    float64            `json:"distanceKm"`
	BasePrice     float64            `json:"basePrice"`
	Contributions []FareContribution `json:"contributions"`
	PreClampTotal float64            `json:"preClampTotal"`
	Price         float64            `json:"price"`
	ClampApplied  bool               `json:"clampApplied"`
}

// FareContribution is one line of a breakdown.
type FareContribution struct {
	Label       string   `json:"label"`
	FromKm      float64  `json:"fromKm"`
	ToKm        *float64 `json:"toKm,omitempty"`
	DistanceKm  float64  `json:"distanceKm"`
	PricePerKm  float64  `json:"pricePerKm"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
}

// FareComputeRequest is the body of POST /v1/fares:compute.
type FareComputeRequest struct {
	DistanceKm   *float64 `json:"distanceKm"`
	FareConfig   string   `json:"fareConfig,omitempty"`
	VehicleClass string   `json:"vehicleClass,omitempty"`
}

// FareComputeResponse is a breakdown tagged with the configuration used.
type FareComputeResponse struct {
	FareConfig   string        `json:"fareConfig"`
	VehicleClass string        `json:"vehicleClass"`
	Breakdown    FareBreakdown `json:"breakdown"`
}

// FixedRouteMatch is a fixed route that overrides metered pricing.
type FixedRouteMatch struct {
	Route    FixedRoute `json:"route"`
	Strategy string     `json:"strategy"`
	Score    float64    `json:"score,omitempty"`
}

// VehicleType is a bookable vehicle class.
type VehicleType struct {
	Class           string  `json:"class"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PriceMultiplier float64 `json:"priceMultiplier"`
	MaxPassengers   int     `json:"maxPassengers"`
}
