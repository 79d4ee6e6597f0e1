// Package fare prices a trip distance with a flat or a tiered fare configuration.
// Calculators are pure functions of the distance and a configuration value.
package fare

import (
	"fmt"
	"math"
	"sort"
)

// Model names a fare strategy.
type Model string

const (
	ModelFlat   Model = "flat"
	ModelTiered Model = "tiered"
)

// Config is either a FlatConfig or a TieredConfig.
type Config interface {
	Model() Model
	Validate() error
	// Scale returns a copy with every monetary field multiplied by factor.
	Scale(factor float64) Config

	compute(distanceKm float64) (*Breakdown, error)
}

// FlatConfig prices base + distance × per-km, clamped to [MinPrice, MaxPrice].
type FlatConfig struct {
	BasePrice  float64 `json:"base_price"`
	PricePerKm float64 `json:"price_per_km"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

var _ Config = FlatConfig{}

func (FlatConfig) Model() Model { return ModelFlat }

// Validate checks that every amount is non-negative and MinPrice ≤ MaxPrice.
func (c FlatConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"base_price", c.BasePrice},
		{"price_per_km", c.PricePerKm},
		{"min_price", c.MinPrice},
		{"max_price", c.MaxPrice},
	}
	for _, f := range fields {
		if err := checkAmount(f.name, f.value); err != nil {
			return err
		}
	}
	if c.MinPrice > c.MaxPrice {
		return &ConfigError{Field: "min_price", Reason: fmt.Sprintf("%v exceeds max_price %v", c.MinPrice, c.MaxPrice)}
	}
	return nil
}

func (c FlatConfig) Scale(factor float64) Config {
	return FlatConfig{
		BasePrice:  c.BasePrice * factor,
		PricePerKm: c.PricePerKm * factor,
		MinPrice:   c.MinPrice * factor,
		MaxPrice:   c.MaxPrice * factor,
	}
}

// PriceTier charges PricePerKm for the part of the trip between FromKm and ToKm.
// A nil ToKm is open-ended.
type PriceTier struct {
	FromKm      float64  `json:"from_km"`
	ToKm        *float64 `json:"to_km"`
	PricePerKm  float64  `json:"price_per_km"`
	Description string   `json:"description,omitempty"`
}

// Label renders the band as "0-10km" or "50-∞km".
func (t PriceTier) Label() string {
	to := "∞"
	if t.ToKm != nil {
		to = formatKm(*t.ToKm)
	}
	return formatKm(t.FromKm) + "-" + to + "km"
}

// TieredConfig prices base + the sum of each band's marginal contribution.
// Tiers are ordered by FromKm; where bands overlap the earlier one wins.
type TieredConfig struct {
	BasePrice float64     `json:"base_price"`
	Tiers     []PriceTier `json:"tiers"`
}

var _ Config = TieredConfig{}

// NewTieredConfig sorts a copy of tiers by FromKm and validates the result.
func NewTieredConfig(basePrice float64, tiers []PriceTier) (TieredConfig, error) {
	sorted := append([]PriceTier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FromKm < sorted[j].FromKm })

	cfg := TieredConfig{BasePrice: basePrice, Tiers: sorted}
	if err := cfg.Validate(); err != nil {
		return TieredConfig{}, err
	}
	return cfg, nil
}

func (TieredConfig) Model() Model { return ModelTiered }

// Validate checks amounts, ordering, and that only the last tier is open-ended.
func (c TieredConfig) Validate() error {
	if err := checkAmount("base_price", c.BasePrice); err != nil {
		return err
	}
	if len(c.Tiers) == 0 {
		return &ConfigError{Field: "tiers", Reason: "at least one tier is required"}
	}

	for i, t := range c.Tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if err := checkAmount(field+".from_km", t.FromKm); err != nil {
			return err
		}
		if err := checkAmount(field+".price_per_km", t.PricePerKm); err != nil {
			return err
		}
		if i > 0 && t.FromKm < c.Tiers[i-1].FromKm {
			return &ConfigError{Field: field + ".from_km", Reason: "tiers must be sorted by from_km"}
		}
		if t.ToKm == nil {
			if i != len(c.Tiers)-1 {
				return &ConfigError{Field: field + ".to_km", Reason: "only the last tier may be open-ended"}
			}
			continue
		}
		if math.IsNaN(*t.ToKm) || *t.ToKm <= t.FromKm {
			return &ConfigError{Field: field + ".to_km", Reason: fmt.Sprintf("must be greater than from_km %v", t.FromKm)}
		}
	}
	return nil
}

func (c TieredConfig) Scale(factor float64) Config {
	tiers := make([]PriceTier, len(c.Tiers))
	for i, t := range c.Tiers {
		tiers[i] = t
		tiers[i].PricePerKm = t.PricePerKm * factor
	}
	return TieredConfig{BasePrice: c.BasePrice * factor, Tiers: tiers}
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &ConfigError{Field: field, Reason: "must not be negative"}
	}
	return nil
}
