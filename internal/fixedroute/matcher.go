package fixedroute

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/trip"
)

// Strategy names how a route was matched.
type Strategy string

const (
	StrategyHierarchical Strategy = "hierarchical"
	StrategyText         Strategy = "text"
)

// Match is a fixed route selected for a request.
type Match struct {
	Route    *Route   `json:"route"`
	Strategy Strategy `json:"strategy"`

	// Level is set for hierarchical matches.
	Level address.Level `json:"-"`

	// Origin and Destination are set for text matches.
	Origin      address.TextMatch `json:"-"`
	Destination address.TextMatch `json:"-"`
	Score       float64           `json:"score,omitempty"`
}

// MatcherConfig configures a Matcher.
type MatcherConfig struct {
	Routes Repository

	// Text compares free-text addresses (default: address.NewMatcher(nil)).
	Text *address.Matcher

	// Units, when set, names administrative units so that requests carrying
	// only codes can still be text matched.
	Units address.Repository

	Logger zerolog.Logger
}

// Matcher decides whether a fixed price overrides metered pricing.
type Matcher struct {
	routes Repository
	text   *address.Matcher
	units  address.Repository
	logger zerolog.Logger
}

// NewMatcher creates a fixed route matcher.
func NewMatcher(cfg MatcherConfig) *Matcher {
	text := cfg.Text
	if text == nil {
		text = address.NewMatcher(nil)
	}
	return &Matcher{
		routes: cfg.Routes,
		text:   text,
		units:  cfg.Units,
		logger: cfg.Logger,
	}
}

// Match returns the fixed route for req, or nil. Absence of a route is normal;
// a failing store is logged and treated as no match.
func (m *Matcher) Match(ctx context.Context, req trip.Request) *Match {
	routes, err := m.routes.List(ctx, true)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load fixed routes")
		return nil
	}
	if len(routes) == 0 {
		return nil
	}

	if req.HasUnits() {
		if match := MatchUnits(routes, req.OriginUnit, req.DestinationUnit); match != nil {
			return match
		}
	}

	originText, destinationText := req.OriginAddress, req.DestinationAddress
	if !req.HasAddresses() && req.HasUnits() {
		originText, destinationText = m.unitNames(ctx, req)
	}
	if originText == "" || destinationText == "" {
		return nil
	}

	match := MatchText(m.text, routes, originText, destinationText)
	if match != nil {
		m.logger.Debug().
			Str("route_id", match.Route.ID).
			Str("origin_stage", string(match.Origin.Stage)).
			Str("destination_stage", string(match.Destination.Stage)).
			Float64("score", match.Score).
			Msg("fixed route matched by text")
	}
	return match
}

// MatchUnits tries ward, then district, then province. At each level a route
// matches only if it is configured at exactly that level on both ends.
func MatchUnits(routes []*Route, origin, destination address.UnitRef) *Match {
	for _, level := range []address.Level{address.LevelWard, address.LevelDistrict, address.LevelProvince} {
		if origin.Level() < level || destination.Level() < level {
			continue
		}
		o, d := origin.Truncate(level), destination.Truncate(level)

		var best *Route
		for _, r := range routes {
			if !r.Active || r.Origin != o || r.Destination != d {
				continue
			}
			if best == nil || r.ID < best.ID {
				best = r
			}
		}
		if best != nil {
			return &Match{Route: best, Strategy: StrategyHierarchical, Level: level}
		}
	}
	return nil
}

// MatchText accepts a route when both ends match independently. Among accepted
// routes the highest combined score wins; ties go to the lowest ID.
func MatchText(text *address.Matcher, routes []*Route, origin, destination string) *Match {
	var best *Match
	for _, r := range routes {
		if !r.Active || !r.HasText() {
			continue
		}

		om := text.Match(r.OriginText, origin)
		if !om.Matched() {
			continue
		}
		dm := text.Match(r.DestinationText, destination)
		if !dm.Matched() {
			continue
		}

		score := om.Score + dm.Score
		if best == nil || score > best.Score || (score == best.Score && r.ID < best.Route.ID) {
			best = &Match{
				Route:       r,
				Strategy:    StrategyText,
				Origin:      om,
				Destination: dm,
				Score:       score,
			}
		}
	}
	return best
}

func (m *Matcher) unitNames(ctx context.Context, req trip.Request) (string, string) {
	if m.units == nil {
		return "", ""
	}

	origin, err := m.units.Resolve(ctx, req.OriginUnit)
	if err != nil {
		m.logger.Debug().Err(err).Msg("origin unit not resolved")
		return "", ""
	}
	destination, err := m.units.Resolve(ctx, req.DestinationUnit)
	if err != nil {
		m.logger.Debug().Err(err).Msg("destination unit not resolved")
		return "", ""
	}
	return origin.FullName(), destination.FullName()
}
