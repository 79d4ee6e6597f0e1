package fare

import (
	"strings"
	"time"
)

// DefaultConfigName is the configuration used when none is selected.
const DefaultConfigName = "default"

// NamedConfig is a stored fare configuration. Exactly one of Flat and Tiered
// is set, matching Model.
type NamedConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Model       Model         `json:"model"`
	Flat        *FlatConfig   `json:"flat,omitempty"`
	Tiered      *TieredConfig `json:"tiered,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Config returns the configuration value.
func (n *NamedConfig) Config() Config {
	switch n.Model {
	case ModelFlat:
		if n.Flat != nil {
			return *n.Flat
		}
	case ModelTiered:
		if n.Tiered != nil {
			return *n.Tiered
		}
	}
	return nil
}

// Validate checks the name, the model tag and the configuration itself.
func (n *NamedConfig) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return &ConfigError{Field: "name", Reason: "required"}
	}

	switch n.Model {
	case ModelFlat:
		if n.Flat == nil || n.Tiered != nil {
			return &ConfigError{Field: "flat", Reason: "a flat config carries only flat settings"}
		}
	case ModelTiered:
		if n.Tiered == nil || n.Flat != nil {
			return &ConfigError{Field: "tiered", Reason: "a tiered config carries only tiered settings"}
		}
	default:
		return &ConfigError{Field: "model", Reason: "must be flat or tiered"}
	}

	return n.Config().Validate()
}

// DefaultFlat is the flat configuration a fresh installation starts with.
var DefaultFlat = FlatConfig{
	BasePrice:  10000,
	PricePerKm: 5000,
	MinPrice:   20000,
	MaxPrice:   500000,
}

// StandardTiers is the tiered configuration a fresh installation starts with.
func StandardTiers() TieredConfig {
	ten, fifty := 10.0, 50.0
	return TieredConfig{
		BasePrice: 10000,
		Tiers: []PriceTier{
			{FromKm: 0, ToKm: &ten, PricePerKm: 15000, Description: "0-10km: 15,000 VNĐ/km (Gần)"},
			{FromKm: 10, ToKm: &fifty, PricePerKm: 12000, Description: "10-50km: 12,000 VNĐ/km (Trung bình)"},
			{FromKm: 50, PricePerKm: 8000, Description: "Trên 50km: 8,000 VNĐ/km (Xa)"},
		},
	}
}

// Defaults returns the seed configurations.
func Defaults() []*NamedConfig {
	flat := DefaultFlat
	tiers := StandardTiers()
	return []*NamedConfig{
		{Name: DefaultConfigName, Description: "Giá theo km", Model: ModelFlat, Flat: &flat},
		{Name: "standard", Description: "Giá bậc thang tiêu chuẩn", Model: ModelTiered, Tiered: &tiers},
	}
}
