package handler

import (
	"fmt"
	"math"
	"time"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/trip"
)

// Currency is the currency every price is quoted in.
const Currency = "VND"

// tripRequest validates the wire trip and converts it to a domain request.
// It only checks shape; whether enough was given to price is the engine's call.
func tripRequest(in models.TripInput) (trip.Request, []models.FieldError) {
	var errs []models.FieldError
	req := trip.Request{
		OriginAddress:      in.OriginAddress,
		DestinationAddress: in.DestinationAddress,
	}

	if (in.Origin == nil) != (in.Destination == nil) {
		field := "destination"
		if in.Origin == nil {
			field = "origin"
		}
		errs = append(errs, models.FieldError{Field: field, Message: "origin and destination coordinates must be given together"})
	}
	for _, p := range []struct {
		field string
		in    *models.Point
		out   **geo.Point
	}{
		{"origin", in.Origin, &req.Origin},
		{"destination", in.Destination, &req.Destination},
	} {
		if p.in == nil {
			continue
		}
		pt := geo.Point{Lat: p.in.Lat, Lon: p.in.Lon}
		if err := pt.Validate(); err != nil {
			errs = append(errs, models.FieldError{Field: p.field, Message: err.Error()})
			continue
		}
		*p.out = &pt
	}

	if in.OriginUnit != nil {
		req.OriginUnit = unitRef(*in.OriginUnit)
	}
	if in.DestinationUnit != nil {
		req.DestinationUnit = unitRef(*in.DestinationUnit)
	}

	if in.DistanceKm != nil {
		km := *in.DistanceKm
		if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
			errs = append(errs, models.FieldError{Field: "distanceKm", Message: "must be a non-negative number"})
		} else {
			req.DistanceKm = km
		}
	}
	if in.DurationMinutes != nil {
		minutes := *in.DurationMinutes
		if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
			errs = append(errs, models.FieldError{Field: "durationMinutes", Message: "must be a non-negative number"})
		} else {
			req.DurationMinutes = minutes
		}
	}

	return req, errs
}

// vehicleClass validates an optional vehicle class; empty means 4 seats.
func vehicleClass(s string) (fare.VehicleClass, *models.FieldError) {
	if s == "" {
		return fare.Vehicle4Seats, nil
	}
	class := fare.VehicleClass(s)
	if _, ok := fare.LookupVehicle(class); !ok {
		return "", &models.FieldError{Field: "vehicleClass", Message: fmt.Sprintf("unknown vehicle class %q", s)}
	}
	return class, nil
}

func unitRef(in models.UnitRef) address.UnitRef {
	return address.UnitRef{
		ProvinceCode: in.ProvinceCode,
		DistrictCode: in.DistrictCode,
		WardCode:     in.WardCode,
	}
}

func toUnitRef(in address.UnitRef) models.UnitRef {
	return models.UnitRef{
		ProvinceCode: in.ProvinceCode,
		DistrictCode: in.DistrictCode,
		WardCode:     in.WardCode,
	}
}

func toPoint(p *geo.Point) *models.Point {
	if p == nil {
		return nil
	}
	return &models.Point{Lat: p.Lat, Lon: p.Lon}
}

func toQuote(q *quote.TripQuote, sel *quote.Selection) models.TripQuote {
	out := models.TripQuote{
		Price:    q.Price,
		Currency: Currency,
		Method:   string(q.Method),
		QuotedAt: models.Timestamp(q.QuotedAt),
	}
	if sel != nil {
		out.FareConfig = sel.Name
		out.VehicleClass = string(sel.Vehicle)
	}
	if q.Estimate != nil {
		est := toEstimate(q.Estimate)
		out.Estimate = &est
	}
	if q.Breakdown != nil {
		b := toBreakdown(q.Breakdown)
		out.Breakdown = &b
	}
	if q.FixedRoute != nil {
		m := toFixedRouteMatch(q.FixedRoute)
		out.FixedRoute = &m
	}
	return out
}

func toEstimate(e *trip.Estimate) models.Estimate {
	ri := e.RouteInfo
	return models.Estimate{
		DistanceKm:      e.DistanceKm,
		DurationMinutes: e.DurationMinutes,
		DurationKnown:   e.DurationKnown,
		Method:          string(e.Method),
		RouteInfo: models.RouteInfo{
			Summary:                ri.Summary,
			Warnings:               ri.Warnings,
			DistanceText:           ri.DistanceText,
			DurationText:           ri.DurationText,
			Provider:               ri.Provider,
			ProviderDistanceMeters: ri.ProviderDistanceMeters,
			StepsCount:             ri.StepsCount,
			StraightDistanceKm:     ri.StraightDistanceKm,
			Multiplier:             ri.Multiplier,
			SpeedKmh:               ri.SpeedKmh,
			Band:                   ri.Band,
			AreaType:               ri.AreaType,
			FallbackReason:         ri.FallbackReason,
		},
	}
}

func toBreakdown(b *fare.Breakdown) models.FareBreakdown {
	out := models.FareBreakdown{
		Model:         string(b.Model),
		DistanceKm:    b.DistanceKm,
		BasePrice:     b.BasePrice,
		Contributions: make([]models.FareContribution, 0, len(b.Contributions)),
		PreClampTotal: b.PreClampTotal,
		Price:         b.Price,
		ClampApplied:  b.ClampApplied,
	}
	for _, c := range b.Contributions {
		out.Contributions = append(out.Contributions, models.FareContribution{
			Label:       c.Label,
			FromKm:      c.FromKm,
			ToKm:        c.ToKm,
			DistanceKm:  c.DistanceKm,
			PricePerKm:  c.PricePerKm,
			Amount:      c.Amount,
			Description: c.Description,
		})
	}
	return out
}

func toFixedRouteMatch(m *fixedroute.Match) models.FixedRouteMatch {
	return models.FixedRouteMatch{
		Route:    toFixedRoute(m.Route),
		Strategy: string(m.Strategy),
		Score:    m.Score,
	}
}

func toFixedRoute(r *fixedroute.Route) models.FixedRoute {
	return models.FixedRoute{
		ID:              r.ID,
		Name:            r.Name,
		Origin:          toUnitRef(r.Origin),
		Destination:     toUnitRef(r.Destination),
		OriginText:      r.OriginText,
		DestinationText: r.DestinationText,
		Price:           r.Price,
		Active:          r.Active,
		Description:     r.Description,
		CreatedAt:       models.Timestamp(r.CreatedAt),
		UpdatedAt:       models.Timestamp(r.UpdatedAt),
	}
}

func fixedRouteFromInput(in models.FixedRouteInput) *fixedroute.Route {
	return &fixedroute.Route{
		Name:            in.Name,
		Origin:          unitRef(in.Origin),
		Destination:     unitRef(in.Destination),
		OriginText:      in.OriginText,
		DestinationText: in.DestinationText,
		Price:           in.Price,
		Description:     in.Description,
	}
}

func toBooking(b *booking.Booking) models.Booking {
	return models.Booking{
		ID:              b.ID,
		Status:          string(b.Status),
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		FromAddress:     b.FromAddress(),
		ToAddress:       b.ToAddress(),
		TravelDate:      b.TravelDate,
		TravelTime:      b.TravelTime,
		Passengers:      b.Passengers,
		VehicleClass:    string(b.Vehicle),
		Notes:           b.Notes,
		FareConfig:      b.FareConfig,
		DistanceKm:      b.DistanceKm,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		Method:          b.Method,
		FixedRouteID:    b.FixedRouteID,
		CreatedAt:       models.Timestamp(b.CreatedAt),
		UpdatedAt:       models.Timestamp(b.UpdatedAt),
	}
}

func toFareConfig(n *fare.NamedConfig) models.FareConfig {
	out := models.FareConfig{
		Name:        n.Name,
		Description: n.Description,
		Model:       string(n.Model),
	}
	if !n.UpdatedAt.IsZero() {
		ts := models.Timestamp(n.UpdatedAt)
		out.UpdatedAt = &ts
	}
	if n.Flat != nil {
		out.Flat = &models.FlatFare{
			BasePrice:  n.Flat.BasePrice,
			PricePerKm: n.Flat.PricePerKm,
			MinPrice:   n.Flat.MinPrice,
			MaxPrice:   n.Flat.MaxPrice,
		}
	}
	if n.Tiered != nil {
		t := &models.TieredFare{BasePrice: n.Tiered.BasePrice, Tiers: make([]models.PriceTier, 0, len(n.Tiered.Tiers))}
		for _, tier := range n.Tiered.Tiers {
			t.Tiers = append(t.Tiers, models.PriceTier{
				FromKm:      tier.FromKm,
				ToKm:        tier.ToKm,
				PricePerKm:  tier.PricePerKm,
				Description: tier.Description,
			})
		}
		out.Tiered = t
	}
	return out
}

// fareConfigFromInput builds a named config. Tiers are sorted by fromKm
// before validation.
func fareConfigFromInput(name string, in models.FareConfigInput) (*fare.NamedConfig, error) {
	n := &fare.NamedConfig{
		Name:        name,
		Description: in.Description,
		Model:       fare.Model(in.Model),
		UpdatedAt:   time.Now().UTC(),
	}
	if in.Flat != nil {
		n.Flat = &fare.FlatConfig{
			BasePrice:  in.Flat.BasePrice,
			PricePerKm: in.Flat.PricePerKm,
			MinPrice:   in.Flat.MinPrice,
			MaxPrice:   in.Flat.MaxPrice,
		}
	}
	if in.Tiered != nil {
		tiers := make([]fare.PriceTier, 0, len(in.Tiered.Tiers))
		for _, t := range in.Tiered.Tiers {
			tiers = append(tiers, fare.PriceTier{
				FromKm:      t.FromKm,
				ToKm:        t.ToKm,
				PricePerKm:  t.PricePerKm,
				Description: t.Description,
			})
		}
		cfg, err := fare.NewTieredConfig(in.Tiered.BasePrice, tiers)
		if err != nil {
			return nil, err
		}
		n.Tiered = &cfg
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
