package quote_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/trip"
)

var (
	district1 = geo.Point{Lat: 10.762622, Lon: 106.660172}
	district7 = geo.Point{Lat: 10.732599, Lon: 106.719749}
)

type countingProvider struct {
	err   error
	calls atomic.Int32
}

func (p *countingProvider) GetDirections(context.Context, routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &routing.DirectionsResponse{
		Provider: "counting",
		Routes:   []routing.Route{{DistanceMeters: 12000, DurationSeconds: 1800, Summary: "Võ Văn Kiệt"}},
	}, nil
}

func (p *countingProvider) Name() string { return "counting" }

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

type fixture struct {
	engine   *quote.Engine
	provider *countingProvider
	routes   *fixedroute.MemoryRepository
}

func newFixture(t *testing.T, provider *countingProvider, units address.Repository) *fixture {
	t.Helper()

	var adapter *distance.ProviderAdapter
	if provider != nil {
		adapter = distance.NewProviderAdapter(distance.AdapterConfig{Provider: provider, Logger: zerolog.Nop()})
	}
	routes := fixedroute.NewMemoryRepository()

	metrics, err := quote.NewMetrics()
	require.NoError(t, err)

	engine := quote.NewEngine(quote.Config{
		Resolver: distance.NewResolver(distance.ResolverConfig{Adapter: adapter, Logger: zerolog.Nop()}),
		Matcher:  fixedroute.NewMatcher(fixedroute.MatcherConfig{Routes: routes, Units: units, Logger: zerolog.Nop()}),
		Units:    units,
		Metrics:  metrics,
		Logger:   zerolog.Nop(),
	})

	return &fixture{engine: engine, provider: provider, routes: routes}
}

func TestEngine_Quote_TieredSuppliedDistance(t *testing.T) {
	f := newFixture(t, nil, nil)

	q, err := f.engine.Quote(context.Background(), trip.Request{DistanceKm: 25}, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, 340000.0, q.Price)
	assert.Equal(t, quote.Method(trip.MethodProvided), q.Method)
	require.NotNil(t, q.Breakdown)
	assert.Equal(t, fare.ModelTiered, q.Breakdown.Model)
	assert.Nil(t, q.FixedRoute)
}

func TestEngine_Quote_FlatClamp(t *testing.T) {
	f := newFixture(t, nil, nil)

	q, err := f.engine.Quote(context.Background(), trip.Request{DistanceKm: 1}, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, 20000.0, q.Price)
	assert.True(t, q.Breakdown.ClampApplied)
	assert.Equal(t, 15000.0, q.Breakdown.PreClampTotal)
}

func TestEngine_Quote_TerrainFallback(t *testing.T) {
	f := newFixture(t, &countingProvider{err: &routing.Error{
		Provider: "counting",
		Code:     "SERVER_503",
		Message:  "server error",
		Err:      routing.ErrProviderUnavailable,
	}}, nil)

	q, err := f.engine.Quote(context.Background(), trip.Request{Origin: &district1, Destination: &district7}, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, quote.Method(trip.MethodTerrainEstimate), q.Method)
	require.NotNil(t, q.Estimate)
	assert.Equal(t, 1.35, q.Estimate.RouteInfo.Multiplier)
	assert.Greater(t, q.Price, 20000.0)
	assert.Equal(t, int32(1), f.provider.calls.Load())
}

func TestEngine_Quote_Provider(t *testing.T) {
	f := newFixture(t, &countingProvider{}, nil)

	q, err := f.engine.Quote(context.Background(), trip.Request{Origin: &district1, Destination: &district7}, standardTiers())
	require.NoError(t, err)

	assert.Equal(t, quote.Method(trip.MethodRoutingProvider), q.Method)
	assert.Equal(t, 12.0, q.Estimate.DistanceKm)
	assert.Equal(t, 30.0, q.Estimate.DurationMinutes)
	// 10000 + 10×15000 + 2×12000
	assert.Equal(t, 184000.0, q.Price)
	assert.Equal(t, "counting", f.engine.ProviderName())
}

func TestEngine_Quote_InsufficientInput(t *testing.T) {
	f := newFixture(t, &countingProvider{}, nil)

	q, err := f.engine.Quote(context.Background(), trip.Request{}, fare.DefaultFlat)
	assert.ErrorIs(t, err, distance.ErrInsufficientInput)
	assert.Nil(t, q)
	assert.Zero(t, f.provider.calls.Load())
}

func TestEngine_Quote_FixedRouteShortCircuits(t *testing.T) {
	f := newFixture(t, &countingProvider{}, nil)
	route := &fixedroute.Route{OriginText: "Quận 1", DestinationText: "Quận 7", Price: 150000}
	require.NoError(t, f.routes.Create(context.Background(), route))

	q, err := f.engine.Quote(context.Background(), trip.Request{
		Origin:             &district1,
		Destination:        &district7,
		OriginAddress:      "Quận 1, TP.HCM",
		DestinationAddress: "Quận 7, TP.HCM",
	}, fare.DefaultFlat)
	require.NoError(t, err)

	assert.Equal(t, quote.MethodFixedRoute, q.Method)
	assert.Equal(t, 150000.0, q.Price)
	require.NotNil(t, q.FixedRoute)
	assert.Equal(t, route.ID, q.FixedRoute.Route.ID)
	assert.Nil(t, q.Estimate)
	assert.Nil(t, q.Breakdown)
	assert.Zero(t, f.provider.calls.Load())
}

func TestEngine_Quote_InvalidConfig(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.engine.Quote(context.Background(), trip.Request{DistanceKm: 5}, fare.FlatConfig{MinPrice: 2, MaxPrice: 1})
	assert.ErrorIs(t, err, fare.ErrInvalidConfig)
}

func TestEngine_ResolveDistance_UnitCenters(t *testing.T) {
	units := address.NewMemoryRepository()
	units.AddProvince(address.Province{Code: "79", Name: "Thành phố Hồ Chí Minh"})
	units.AddDistrict(address.District{Code: "760", Name: "Quận 1", ProvinceCode: "79", Center: &district1})
	units.AddDistrict(address.District{Code: "778", Name: "Quận 7", ProvinceCode: "79", Center: &district7})
	f := newFixture(t, nil, units)

	est, err := f.engine.ResolveDistance(context.Background(), trip.Request{
		OriginUnit:      address.UnitRef{ProvinceCode: "79", DistrictCode: "760"},
		DestinationUnit: address.UnitRef{ProvinceCode: "79", DistrictCode: "778"},
	})
	require.NoError(t, err)

	assert.Equal(t, trip.MethodTerrainEstimate, est.Method)
	assert.InDelta(t, 7.31, est.RouteInfo.StraightDistanceKm, 0.05)
	assert.Equal(t, distance.FallbackProviderNotConfigured, est.RouteInfo.FallbackCode)
	assert.Contains(t, est.RouteInfo.Warnings, "Tọa độ lấy theo trung tâm đơn vị hành chính")
}

func TestEngine_ResolveDistance_UnitsWithoutCenter(t *testing.T) {
	units := address.NewMemoryRepository()
	units.AddProvince(address.Province{Code: "79", Name: "Thành phố Hồ Chí Minh"})
	f := newFixture(t, nil, units)

	_, err := f.engine.ResolveDistance(context.Background(), trip.Request{
		OriginUnit:      address.UnitRef{ProvinceCode: "79"},
		DestinationUnit: address.UnitRef{ProvinceCode: "79"},
	})
	assert.ErrorIs(t, err, distance.ErrInsufficientInput)
}

func TestEngine_ResolveDistance_SharedCenter(t *testing.T) {
	units := address.NewMemoryRepository()
	units.AddProvince(address.Province{Code: "79", Name: "Thành phố Hồ Chí Minh"})
	units.AddDistrict(address.District{Code: "760", Name: "Quận 1", ProvinceCode: "79", Center: &district1})
	units.AddWard(address.Ward{Code: "26734", Name: "Phường Bến Nghé", DistrictCode: "760"})
	f := newFixture(t, &countingProvider{}, units)

	req := trip.Request{
		OriginUnit:      address.UnitRef{ProvinceCode: "79", DistrictCode: "760", WardCode: "26734"},
		DestinationUnit: address.UnitRef{ProvinceCode: "79", DistrictCode: "760"},
	}

	est, err := f.engine.ResolveDistance(context.Background(), req)
	assert.Nil(t, est)
	assert.ErrorIs(t, err, distance.ErrInsufficientInput)
	assert.ErrorIs(t, err, distance.ErrCoincidentEndpoints)

	q, err := f.engine.Quote(context.Background(), req, standardTiers())
	assert.Nil(t, q)
	assert.ErrorIs(t, err, distance.ErrCoincidentEndpoints)
	assert.NotErrorIs(t, err, fare.ErrInvalidDistance)
	assert.Zero(t, f.provider.calls.Load())
}

func TestEngine_ComputeFare(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.engine.ComputeFare(0, standardTiers())
	assert.ErrorIs(t, err, fare.ErrInvalidDistance)

	b, err := f.engine.ComputeFare(25, standardTiers())
	require.NoError(t, err)
	assert.Equal(t, 340000.0, b.Price)
}
