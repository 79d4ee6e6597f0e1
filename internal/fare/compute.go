package fare

import (
	"math"
	"strconv"
)

// Contribution is one line of a breakdown.
type Contribution struct {
	Label       string   `json:"label"`
	FromKm      float64  `json:"from_km"`
	ToKm        *float64 `json:"to_km,omitempty"`
	DistanceKm  float64  `json:"distance_km"`
	PricePerKm  float64  `json:"price_per_km"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description,omitempty"`
}

// Breakdown is the priced result of a calculator.
type Breakdown struct {
	Model         Model          `json:"model"`
	DistanceKm    float64        `json:"distance_km"`
	BasePrice     float64        `json:"base_price"`
	Contributions []Contribution `json:"contributions"`
	PreClampTotal float64        `json:"pre_clamp_total"`
	// Price is rounded to whole đồng.
	Price        float64 `json:"price"`
	ClampApplied bool    `json:"clamp_applied"`
}

// Compute prices distanceKm with cfg. It returns ErrInvalidDistance for a
// distance the model cannot price and a *ConfigError for a malformed cfg.
func Compute(distanceKm float64, cfg Config) (*Breakdown, error) {
	if cfg == nil {
		return nil, &ConfigError{Field: "config", Reason: "missing"}
	}
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return nil, invalidDistance(distanceKm)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.compute(distanceKm)
}

func (c FlatConfig) compute(distanceKm float64) (*Breakdown, error) {
	if distanceKm < 0 {
		return nil, invalidDistance(distanceKm)
	}

	distanceCost := distanceKm * c.PricePerKm
	raw := c.BasePrice + distanceCost
	clamped := math.Max(c.MinPrice, math.Min(raw, c.MaxPrice))

	return &Breakdown{
		Model:      ModelFlat,
		DistanceKm: distanceKm,
		BasePrice:  c.BasePrice,
		Contributions: []Contribution{{
			Label:      "distance",
			DistanceKm: distanceKm,
			PricePerKm: c.PricePerKm,
			Amount:     distanceCost,
		}},
		PreClampTotal: raw,
		Price:         math.Round(clamped),
		ClampApplied:  clamped != raw,
	}, nil
}

func (c TieredConfig) compute(distanceKm float64) (*Breakdown, error) {
	if distanceKm <= 0 {
		return nil, invalidDistance(distanceKm)
	}

	total := c.BasePrice
	contributions := []Contribution{}
	covered := 0.0

	for _, t := range c.Tiers {
		if t.FromKm >= distanceKm {
			break
		}

		start := math.Max(t.FromKm, covered)
		end := distanceKm
		if t.ToKm != nil && *t.ToKm < end {
			end = *t.ToKm
		}
		if end <= start {
			continue
		}

		span := end - start
		amount := span * t.PricePerKm
		total += amount
		covered = end

		desc := t.Description
		if desc == "" {
			desc = "Bậc " + t.Label()
		}
		contributions = append(contributions, Contribution{
			Label:       t.Label(),
			FromKm:      t.FromKm,
			ToKm:        t.ToKm,
			DistanceKm:  span,
			PricePerKm:  t.PricePerKm,
			Amount:      amount,
			Description: desc,
		})
	}

	return &Breakdown{
		Model:         ModelTiered,
		DistanceKm:    distanceKm,
		BasePrice:     c.BasePrice,
		Contributions: contributions,
		PreClampTotal: total,
		Price:         math.Round(total),
	}, nil
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}
