package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/geo"
)

func TestGreatCircleKm(t *testing.T) {
	tests := []struct {
		name string
		a, b geo.Point
		want float64
		tol  float64
	}{
		{
			name: "same point",
			a:    geo.Point{Lat: 10.762622, Lon: 106.660172},
			b:    geo.Point{Lat: 10.762622, Lon: 106.660172},
			want: 0,
			tol:  1e-9,
		},
		{
			name: "district 10 to district 7 in saigon",
			a:    geo.Point{Lat: 10.762622, Lon: 106.660172},
			b:    geo.Point{Lat: 10.732599, Lon: 106.719749},
			want: 7.31,
			tol:  0.1,
		},
		{
			name: "hanoi to saigon",
			a:    geo.Point{Lat: 21.028511, Lon: 105.804817},
			b:    geo.Point{Lat: 10.823099, Lon: 106.629664},
			want: 1137,
			tol:  10,
		},
		{
			name: "one degree of longitude at the equator",
			a:    geo.Point{Lat: 0, Lon: 0},
			b:    geo.Point{Lat: 0, Lon: 1},
			want: 2 * math.Pi * geo.EarthRadiusKm / 360,
			tol:  1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.GreatCircleKm(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, tt.tol)
			assert.InDelta(t, got, geo.GreatCircleKm(tt.b, tt.a), 1e-9, "distance is symmetric")
		})
	}
}

func TestPoint_Validate(t *testing.T) {
	require.NoError(t, geo.Point{Lat: 90, Lon: -180}.Validate())
	require.NoError(t, geo.Point{Lat: 10.76, Lon: 106.66}.Validate())

	for _, p := range []geo.Point{
		{Lat: 91, Lon: 0},
		{Lat: -90.5, Lon: 0},
		{Lat: 0, Lon: 180.1},
		{Lat: math.NaN(), Lon: 0},
	} {
		err := p.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, geo.ErrInvalidPoint)
	}
}
