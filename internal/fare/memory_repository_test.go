package fare_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/fare"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := fare.NewMemoryRepository(fare.Defaults()...)

	cfg, err := repo.Get(ctx, fare.DefaultConfigName)
	require.NoError(t, err)
	assert.Equal(t, fare.ModelFlat, cfg.Model)
	assert.Equal(t, fare.DefaultFlat, cfg.Config())

	standard, err := repo.Get(ctx, "standard")
	require.NoError(t, err)
	b, err := fare.Compute(25, standard.Config())
	require.NoError(t, err)
	assert.Equal(t, 340000.0, b.Price)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, fare.ErrConfigNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fare.DefaultConfigName, list[0].Name)
}

func TestMemoryRepository_UpsertValidates(t *testing.T) {
	ctx := context.Background()
	repo := fare.NewMemoryRepository()

	err := repo.Upsert(ctx, &fare.NamedConfig{
		Name:  "broken",
		Model: fare.ModelFlat,
		Flat:  &fare.FlatConfig{MinPrice: 100, MaxPrice: 1},
	})
	assert.ErrorIs(t, err, fare.ErrInvalidConfig)

	err = repo.Upsert(ctx, &fare.NamedConfig{Name: "mixed", Model: fare.ModelTiered, Flat: &fare.DefaultFlat})
	assert.ErrorIs(t, err, fare.ErrInvalidConfig)

	err = repo.Upsert(ctx, &fare.NamedConfig{Name: "", Model: fare.ModelFlat, Flat: &fare.DefaultFlat})
	assert.ErrorIs(t, err, fare.ErrInvalidConfig)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := fare.NewMemoryRepository(fare.Defaults()...)

	cfg, err := repo.Get(ctx, "standard")
	require.NoError(t, err)
	cfg.Tiered.Tiers[0].PricePerKm = 1
	*cfg.Tiered.Tiers[0].ToKm = 99

	again, err := repo.Get(ctx, "standard")
	require.NoError(t, err)
	assert.Equal(t, 15000.0, again.Tiered.Tiers[0].PricePerKm)
	assert.Equal(t, 10.0, *again.Tiered.Tiers[0].ToKm)
}

func TestMemoryRepository_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := fare.NewMemoryRepository()

	weekend, err := fare.NewTieredConfig(15000, []fare.PriceTier{
		{FromKm: 0, ToKm: km(10), PricePerKm: 18000},
		{FromKm: 10, ToKm: km(30), PricePerKm: 15000},
		{FromKm: 30, PricePerKm: 10000},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &fare.NamedConfig{Name: "weekend", Model: fare.ModelTiered, Tiered: &weekend}))

	got, err := repo.Get(ctx, "weekend")
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "weekend"))
	assert.ErrorIs(t, repo.Delete(ctx, "weekend"), fare.ErrConfigNotFound)
}
