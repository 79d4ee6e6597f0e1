package settings

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepository struct {
	Repository
	gets atomic.Int32
	err  error
}

func (r *countingRepository) Get(ctx context.Context, key string) (*Setting, error) {
	r.gets.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.Get(ctx, key)
}

func (r *countingRepository) All(ctx context.Context) (map[string]*Setting, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.All(ctx)
}

func newService(repo Repository) *Service {
	return NewService(ServiceConfig{Repository: repo, Logger: zerolog.Nop(), CacheTTL: time.Minute})
}

func TestService_Defaults(t *testing.T) {
	svc := newService(NewMemoryRepository())
	ctx := context.Background()

	assert.True(t, svc.RoutingProviderEnabled(ctx))
	assert.Equal(t, "default", svc.ActiveFareConfig(ctx))
	assert.Nil(t, svc.Get(ctx, "unknown"))
}

func TestService_SetOverridesDefault(t *testing.T) {
	svc := newService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx,
		&Setting{Key: KeyRoutingProviderEnabled, Value: false},
		&Setting{Key: KeyActiveFareConfig, Value: "standard"},
	))

	assert.False(t, svc.RoutingProviderEnabled(ctx))
	assert.Equal(t, "standard", svc.ActiveFareConfig(ctx))
}

func TestService_CachesReads(t *testing.T) {
	repo := &countingRepository{Repository: NewMemoryRepository(&Setting{Key: KeyActiveFareConfig, Value: "standard"})}
	svc := newService(repo)
	ctx := context.Background()

	for range 5 {
		assert.Equal(t, "standard", svc.ActiveFareConfig(ctx))
	}
	assert.Equal(t, int32(1), repo.gets.Load())

	// Advance past the TTL.
	now := time.Now()
	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	svc.ActiveFareConfig(ctx)
	assert.Equal(t, int32(2), repo.gets.Load())
}

func TestService_StoreFailureFallsBackToDefault(t *testing.T) {
	repo := &countingRepository{Repository: NewMemoryRepository(), err: errors.New("connection refused")}
	svc := newService(repo)
	ctx := context.Background()

	assert.True(t, svc.RoutingProviderEnabled(ctx))
	all := svc.All(ctx)
	assert.Len(t, all, 2)
}

func TestService_Reset(t *testing.T) {
	svc := newService(NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, &Setting{Key: KeyRoutingProviderEnabled, Value: false}))
	require.False(t, svc.RoutingProviderEnabled(ctx))

	require.NoError(t, svc.Reset(ctx, KeyRoutingProviderEnabled))
	assert.True(t, svc.RoutingProviderEnabled(ctx))

	assert.ErrorIs(t, svc.Reset(ctx, KeyRoutingProviderEnabled), ErrSettingNotFound)
}

func TestService_AllMergesStoredOverDefaults(t *testing.T) {
	svc := newService(NewMemoryRepository(&Setting{Key: "banner", Value: "Tết"}))
	all := svc.All(context.Background())

	require.Len(t, all, 3)
	assert.Equal(t, "Tết", all["banner"].String(""))
	assert.Equal(t, true, all[KeyRoutingProviderEnabled].Value)
}

func TestSetting_Accessors(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"bool", false, false},
		{"json number", float64(1), true},
		{"string on", "on", true},
		{"string off", "false", false},
		{"unparseable", "maybe", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Setting{Value: tt.value}
			assert.Equal(t, tt.want, s.Bool(true))
		})
	}

	var nilSetting *Setting
	assert.Equal(t, "x", nilSetting.String("x"))
	assert.Equal(t, "x", (&Setting{Value: ""}).String("x"))

	var target struct{ Limit int }
	require.NoError(t, (&Setting{Value: map[string]any{"Limit": float64(3)}}).Decode(&target))
	assert.Equal(t, 3, target.Limit)
}
