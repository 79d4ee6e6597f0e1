// Package worker consumes booking events and background jobs for TripFare.
package worker

import (
	"sort"
	"time"

	"github.com/tripfare/tripfare/internal/geo"
)

// WarmupPair is a popular origin/destination pair whose directions are kept
// in the routing cache so quotes between them rarely hit the provider.
type WarmupPair struct {
	// Name is the human-readable name of the pair.
	Name string

	Origin      geo.Point
	Destination geo.Point

	// Priority determines warm-up order (lower = earlier).
	Priority int
}

// WarmupConfig holds configuration for the routing warm-up job.
type WarmupConfig struct {
	// Pairs to warm. If empty, uses DefaultWarmupPairs.
	Pairs []WarmupPair

	// Concurrency is the number of concurrent provider queries.
	// Default: 3
	Concurrency int

	// Timeout bounds each query.
	// Default: 15 seconds
	Timeout time.Duration
}

// DefaultWarmupConfig returns the default warm-up configuration.
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Pairs:       DefaultWarmupPairs(),
		Concurrency: 3,
		Timeout:     15 * time.Second,
	}
}

// DefaultWarmupPairs returns airport and intercity transfers that make up
// most bookings.
func DefaultWarmupPairs() []WarmupPair {
	var (
		tanSonNhat = geo.Point{Lat: 10.8185, Lon: 106.6588}
		benThanh   = geo.Point{Lat: 10.7725, Lon: 106.6980}
		district7  = geo.Point{Lat: 10.7326, Lon: 106.7197}
		vungTau    = geo.Point{Lat: 10.3460, Lon: 107.0843}
		noiBai     = geo.Point{Lat: 21.2187, Lon: 105.8042}
		hoanKiem   = geo.Point{Lat: 21.0288, Lon: 105.8525}
		haLong     = geo.Point{Lat: 20.9517, Lon: 107.0800}
		daNangAir  = geo.Point{Lat: 16.0544, Lon: 108.2022}
		hoiAn      = geo.Point{Lat: 15.8801, Lon: 108.3380}
	)
	return []WarmupPair{
		{Name: "Tân Sơn Nhất - Bến Thành", Origin: tanSonNhat, Destination: benThanh, Priority: 1},
		{Name: "Bến Thành - Tân Sơn Nhất", Origin: benThanh, Destination: tanSonNhat, Priority: 1},
		{Name: "Tân Sơn Nhất - Quận 7", Origin: tanSonNhat, Destination: district7, Priority: 1},
		{Name: "Nội Bài - Hoàn Kiếm", Origin: noiBai, Destination: hoanKiem, Priority: 1},
		{Name: "Hoàn Kiếm - Nội Bài", Origin: hoanKiem, Destination: noiBai, Priority: 1},
		{Name: "Đà Nẵng - Hội An", Origin: daNangAir, Destination: hoiAn, Priority: 2},
		{Name: "TP.HCM - Vũng Tàu", Origin: benThanh, Destination: vungTau, Priority: 2},
		{Name: "Hà Nội - Hạ Long", Origin: hoanKiem, Destination: haLong, Priority: 3},
	}
}

// Ordered returns the pairs sorted by priority, keeping input order within a priority.
func (c WarmupConfig) Ordered() []WarmupPair {
	out := make([]WarmupPair, len(c.Pairs))
	copy(out, c.Pairs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
