package models

// FareConfig is a stored fare configuration.
type FareConfig struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Model       string      `json:"model"`
	Flat        *FlatFare   `json:"flat,omitempty"`
	Tiered      *TieredFare `json:"tiered,omitempty"`
	UpdatedAt   *Timestamp  `json:"updatedAt,omitempty"`
}

// FareConfigInput is the body of PUT /v1/admin/fare-configs/{name}.
type FareConfigInput struct {
	Description string      `json:"description,omitempty"`
	Model       string      `json:"model"`
	Flat        *FlatFare   `json:"flat,omitempty"`
	Tiered      *TieredFare `json:"tiered,omitempty"`
}

// FlatFare is base + per-km, clamped to [minPrice, maxPrice].
type FlatFare struct {
	BasePrice  float64 `json:"basePrice"`
	PricePerKm float64 `json:"pricePerKm"`
	MinPrice   float64 `json:"minPrice"`
	MaxPrice   float64 `json:"maxPrice"`
}

// TieredFare is base + marginal per-km bands.
type TieredFare struct {
	BasePrice float64     `json:"basePrice"`
	Tiers     []PriceTier `json:"tiers"`
}

// PriceTier is one distance band. A missing toKm is open-ended.
type PriceTier struct {
	FromKm      float64  `json:"fromKm"`
	ToKm        *float64 `json:"toKm,omitempty"`
	PricePerKm  float64  `json:"pricePerKm"`
	Description string   `json:"description,omitempty"`
}

// FareConfigList wraps the stored configurations.
type FareConfigList struct {
	Items  []FareConfig `json:"items"`
	Active string       `json:"active"`
}

// FixedRoute is a flat-price route.
type FixedRoute struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Origin          UnitRef   `json:"origin"`
	Destination     UnitRef   `json:"destination"`
	OriginText      string    `json:"originText,omitempty"`
	DestinationText string    `json:"destinationText,omitempty"`
	Price           float64   `json:"price"`
	Active          bool      `json:"active"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// FixedRouteInput is the body for creating or replacing a fixed route.
type FixedRouteInput struct {
	Name            string  `json:"name"`
	Origin          UnitRef `json:"origin"`
	Destination     UnitRef `json:"destination"`
	OriginText      string  `json:"originText,omitempty"`
	DestinationText string  `json:"destinationText,omitempty"`
	Price           float64 `json:"price"`
	Description     string  `json:"description,omitempty"`
}

// FixedRouteList wraps a list of routes.
type FixedRouteList struct {
	Items []FixedRoute `json:"items"`
}

// Setting is one runtime setting.
type Setting struct {
	Key       string     `json:"key"`
	Value     any        `json:"value"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

// SettingsList wraps all settings, stored values merged over defaults.
type SettingsList struct {
	Items []Setting `json:"items"`
}

// SettingsUpdate is the body of PUT /v1/admin/settings.
type SettingsUpdate struct {
	Settings map[string]any `json:"settings"`
}
