package distance

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/trip"
)

const estimateWarning = "Khoảng cách ước tính dựa trên đặc điểm giao thông Việt Nam"

// Band adjusts straight-line distances below UpperKm.
type Band struct {
	Name       string
	UpperKm    float64 // exclusive
	Multiplier float64
	SpeedKmh   float64
	AreaType   string
}

// DefaultBands is the canonical multiplier and speed table, keyed by straight-line distance.
var DefaultBands = []Band{
	{Name: "0-5km", UpperKm: 5, Multiplier: 1.5, SpeedKmh: 25, AreaType: "nội thành"},
	{Name: "5-15km", UpperKm: 15, Multiplier: 1.35, SpeedKmh: 35, AreaType: "ngoại thành"},
	{Name: "15-50km", UpperKm: 50, Multiplier: 1.25, SpeedKmh: 45, AreaType: "liên quận"},
	{Name: "50km+", UpperKm: math.Inf(1), Multiplier: 1.15, SpeedKmh: 55, AreaType: "liên tỉnh"},
}

// TerrainEstimator turns a great-circle distance into an approximate road distance.
type TerrainEstimator struct {
	bands []Band
}

// NewTerrainEstimator creates an estimator. Bands must be ordered by UpperKm with
// the last one unbounded; nil uses DefaultBands.
func NewTerrainEstimator(bands []Band) *TerrainEstimator {
	if len(bands) == 0 {
		bands = DefaultBands
	}
	return &TerrainEstimator{bands: bands}
}

// BandFor selects the band for a straight-line distance.
func (e *TerrainEstimator) BandFor(straightKm float64) Band {
	for _, b := range e.bands {
		if straightKm < b.UpperKm {
			return b
		}
	}
	return e.bands[len(e.bands)-1]
}

// Estimate never fails. Both points must already be validated.
func (e *TerrainEstimator) Estimate(origin, destination geo.Point) trip.Estimate {
	straight := geo.GreatCircleKm(origin, destination)
	band := e.BandFor(straight)

	adjusted := straight * band.Multiplier
	minutes := adjusted / band.SpeedKmh * 60

	return trip.Estimate{
		DistanceKm:      round(adjusted, 2),
		DurationMinutes: round(minutes, 1),
		DurationKnown:   true,
		Method:          trip.MethodTerrainEstimate,
		RouteInfo: trip.RouteInfo{
			Summary:            fmt.Sprintf("Ước tính %s (hệ số ×%s)", band.AreaType, strconv.FormatFloat(band.Multiplier, 'f', -1, 64)),
			Warnings:           []string{estimateWarning},
			DistanceText:       fmt.Sprintf("%.2f km", adjusted),
			DurationText:       fmt.Sprintf("~%d phút", int(math.Round(minutes))),
			StraightDistanceKm: round(straight, 2),
			Multiplier:         band.Multiplier,
			SpeedKmh:           band.SpeedKmh,
			Band:               band.Name,
			AreaType:           band.AreaType,
		},
	}
}

// round rounds v to the given decimal places, keeping tiny positive values positive.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 && v > 0 {
		return v
	}
	return r
}
