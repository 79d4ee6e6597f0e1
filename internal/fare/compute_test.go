package fare_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/fare"
)

func km(v float64) *float64 { return &v }

func standardTiers() fare.TieredConfig {
	return fare.TieredConfig{
		BasePrice: 10000,
		Tiers: []fare.PriceTier{
			{FromKm: 0, ToKm: km(10), PricePerKm: 15000},
			{FromKm: 10, ToKm: km(50), PricePerKm: 12000},
			{FromKm: 50, PricePerKm: 8000},
		},
	}
}

func TestCompute_TieredMarginal(t *testing.T) {
	b, err := fare.Compute(25, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 340000.0, b.Price)
	assert.Equal(t, fare.ModelTiered, b.Model)
	assert.False(t, b.ClampApplied)

	require.Len(t, b.Contributions, 2)
	assert.Equal(t, "0-10km", b.Contributions[0].Label)
	assert.Equal(t, 10.0, b.Contributions[0].DistanceKm)
	assert.Equal(t, 150000.0, b.Contributions[0].Amount)
	assert.Equal(t, "10-50km", b.Contributions[1].Label)
	assert.Equal(t, 15.0, b.Contributions[1].DistanceKm)
	assert.Equal(t, 180000.0, b.Contributions[1].Amount)
	assert.Equal(t, "Bậc 10-50km", b.Contributions[1].Description)
}

func TestCompute_TieredOpenEnded(t *testing.T) {
	b, err := fare.Compute(80, standardTiers())
	require.NoError(t, err)

	// 10000 + 10×15000 + 40×12000 + 30×8000
	assert.Equal(t, 880000.0, b.Price)
	require.Len(t, b.Contributions, 3)
	assert.Equal(t, "50-∞km", b.Contributions[2].Label)
	assert.Nil(t, b.Contributions[2].ToKm)
}

func TestCompute_TieredBoundary(t *testing.T) {
	b, err := fare.Compute(10, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 160000.0, b.Price)
	assert.Len(t, b.Contributions, 1)
}

func TestCompute_TieredOverlapFirstWins(t *testing.T) {
	cfg := fare.TieredConfig{
		BasePrice: 0,
		Tiers: []fare.PriceTier{
			{FromKm: 0, ToKm: km(20), PricePerKm: 1000},
			{FromKm: 10, ToKm: km(30), PricePerKm: 5000},
		},
	}

	b, err := fare.Compute(25, cfg)
	require.NoError(t, err)

	// 20 km in the first band, only the remaining 5 km in the second.
	assert.Equal(t, 20000.0+5*5000.0, b.Price)
	assert.Equal(t, 5.0, b.Contributions[1].DistanceKm)
}

func TestCompute_TieredGapIsNotBilled(t *testing.T) {
	cfg := fare.TieredConfig{
		BasePrice: 1000,
		Tiers: []fare.PriceTier{
			{FromKm: 0, ToKm: km(5), PricePerKm: 100},
			{FromKm: 10, PricePerKm: 200},
		},
	}

	b, err := fare.Compute(12, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1000.0+500+400, b.Price)
}

func TestCompute_TieredInvalidDistance(t *testing.T) {
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := fare.Compute(d, standardTiers())
		assert.ErrorIs(t, err, fare.ErrInvalidDistance, "distance %v", d)
	}
}

func TestCompute_FlatClampedToMinimum(t *testing.T) {
	b, err := fare.Compute(1, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, 15000.0, b.PreClampTotal)
	assert.Equal(t, 20000.0, b.Price)
	assert.True(t, b.ClampApplied)
}

func TestCompute_FlatClampedToMaximum(t *testing.T) {
	b, err := fare.Compute(200, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, 1010000.0, b.PreClampTotal)
	assert.Equal(t, 500000.0, b.Price)
	assert.True(t, b.ClampApplied)
}

func TestCompute_FlatUnclamped(t *testing.T) {
	b, err := fare.Compute(9.87, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, 59350.0, b.Price)
	assert.False(t, b.ClampApplied)
	require.Len(t, b.Contributions, 1)
	assert.InDelta(t, 49350.0, b.Contributions[0].Amount, 1e-6)
}

func TestCompute_FlatZeroDistance(t *testing.T) {
	b, err := fare.Compute(0, fare.DefaultFlat)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, b.Price)

	_, err = fare.Compute(-0.5, fare.DefaultFlat)
	assert.ErrorIs(t, err, fare.ErrInvalidDistance)
}

func TestCompute_FlatWithinBounds(t *testing.T) {
	cfg := fare.FlatConfig{BasePrice: 7000, PricePerKm: 3300, MinPrice: 25000, MaxPrice: 90000}

	for d := 0.0; d <= 60; d += 0.25 {
		b, err := fare.Compute(d, cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Price, cfg.MinPrice)
		assert.LessOrEqual(t, b.Price, cfg.MaxPrice)
	}
}

func TestCompute_Monotonic(t *testing.T) {
	configs := map[string]fare.Config{
		"flat":   fare.DefaultFlat,
		"tiered": standardTiers(),
		"overlap": fare.TieredConfig{Tiers: []fare.PriceTier{
			{FromKm: 0, ToKm: km(20), PricePerKm: 1000},
			{FromKm: 5, ToKm: km(8), PricePerKm: 9000},
			{FromKm: 15, PricePerKm: 300},
		}},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			prev := -1.0
			for d := 0.1; d <= 150; d += 0.1 {
				b, err := fare.Compute(d, cfg)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, b.Price, prev, "distance %v", d)
				prev = b.Price
			}
		})
	}
}

func TestCompute_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   fare.Config
		field string
	}{
		{"min above max", fare.FlatConfig{MinPrice: 10, MaxPrice: 5}, "min_price"},
		{"negative per km", fare.FlatConfig{PricePerKm: -1, MaxPrice: 5}, "price_per_km"},
		{"no tiers", fare.TieredConfig{BasePrice: 1}, "tiers"},
		{"open-ended not last", fare.TieredConfig{Tiers: []fare.PriceTier{
			{FromKm: 0, PricePerKm: 1},
			{FromKm: 10, ToKm: km(20), PricePerKm: 1},
		}}, "tiers[0].to_km"},
		{"to not above from", fare.TieredConfig{Tiers: []fare.PriceTier{
			{FromKm: 10, ToKm: km(10), PricePerKm: 1},
		}}, "tiers[0].to_km"},
		{"unsorted", fare.TieredConfig{Tiers: []fare.PriceTier{
			{FromKm: 10, ToKm: km(20), PricePerKm: 1},
			{FromKm: 0, ToKm: km(10), PricePerKm: 1},
		}}, "tiers[1].from_km"},
		{"nil", nil, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fare.Compute(5, tt.cfg)
			require.ErrorIs(t, err, fare.ErrInvalidConfig)

			var cerr *fare.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNewTieredConfig_Sorts(t *testing.T) {
	cfg, err := fare.NewTieredConfig(10000, []fare.PriceTier{
		{FromKm: 50, PricePerKm: 8000},
		{FromKm: 0, ToKm: km(10), PricePerKm: 15000},
		{FromKm: 10, ToKm: km(50), PricePerKm: 12000},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Tiers[0].FromKm)

	b, err := fare.Compute(25, cfg)
	require.NoError(t, err)
	assert.Equal(t, 340000.0, b.Price)
}
