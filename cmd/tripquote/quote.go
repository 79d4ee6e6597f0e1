package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tripfare/tripfare/internal/app"
	"github.com/tripfare/tripfare/internal/config"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/trip"
)

type quoteOptions struct {
	from, to     string
	fromAddress  string
	toAddress    string
	distanceKm   float64
	durationMin  float64
	base         float64
	perKm        float64
	minPrice     float64
	maxPrice     float64
	tiers        string
	vehicle      string
	provider     string
	apiKey       string
	timeout      time.Duration
	allowTolls   bool
	debug        bool
	compactPrint bool
}

// quoteOutput is what the quote command prints.
type quoteOutput struct {
	Price        float64          `json:"price"`
	Currency     string           `json:"currency"`
	VehicleClass string           `json:"vehicle_class"`
	FareModel    fare.Model       `json:"fare_model"`
	Quote        *quote.TripQuote `json:"quote"`
}

func newQuoteCmd() *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a trip between two points or for a known distance",
		Example: `  tripquote quote --from 10.7626,106.6602 --to 10.7326,106.7197
  tripquote quote --distance 60 --tiers "0-10:15000,10-50:12000,50-:8000"
  tripquote quote --from 10.7626,106.6602 --to 10.346,107.0843 --provider google --vehicle 7_seats`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuote(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, cmd.Flags().Changed("distance"))
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "pickup as lat,lon")
	f.StringVar(&opts.to, "to", "", "drop-off as lat,lon")
	f.StringVar(&opts.fromAddress, "from-address", "", "pickup address, for display")
	f.StringVar(&opts.toAddress, "to-address", "", "drop-off address, for display")
	f.Float64Var(&opts.distanceKm, "distance", 0, "known trip distance in km; skips routing")
	f.Float64Var(&opts.durationMin, "duration", 0, "known trip duration in minutes")
	f.Float64Var(&opts.base, "base", fare.DefaultFlat.BasePrice, "base price in VND")
	f.Float64Var(&opts.perKm, "per-km", fare.DefaultFlat.PricePerKm, "flat price per km in VND")
	f.Float64Var(&opts.minPrice, "min", fare.DefaultFlat.MinPrice, "flat minimum price in VND")
	f.Float64Var(&opts.maxPrice, "max", fare.DefaultFlat.MaxPrice, "flat maximum price in VND")
	f.StringVar(&opts.tiers, "tiers", "", `tiered rates, e.g. "0-10:15000,10-50:12000,50-:8000"`)
	f.StringVar(&opts.vehicle, "vehicle", string(fare.Vehicle4Seats), "vehicle class: 4_seats, 7_seats or 16_seats")
	f.StringVar(&opts.provider, "provider", config.ProviderNone, "routing provider: google, ors or none")
	f.StringVar(&opts.apiKey, "api-key", "", "routing provider key (default: GOOGLE_MAPS_API_KEY or ORS_API_KEY)")
	f.DurationVar(&opts.timeout, "timeout", config.MaxRoutingTimeout, "routing provider timeout")
	f.BoolVar(&opts.allowTolls, "allow-tolls", false, "let the provider route over toll roads")
	f.BoolVarP(&opts.debug, "debug", "v", false, "log to stderr")
	f.BoolVar(&opts.compactPrint, "compact", false, "print JSON on one line")
	return cmd
}

func runQuote(ctx context.Context, stdout, stderr io.Writer, opts *quoteOptions, distanceGiven bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	vehicle := fare.VehicleClass(opts.vehicle)
	if _, ok := fare.LookupVehicle(vehicle); !ok {
		return fmt.Errorf("unknown vehicle class %q", opts.vehicle)
	}

	cfg, err := fareConfig(opts)
	if err != nil {
		return err
	}

	req, err := tripRequest(opts, distanceGiven)
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if opts.debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	}

	engine, closeFn, err := newEngine(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	q, err := engine.Quote(ctx, req, fare.ScaleFor(cfg, vehicle))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if !opts.compactPrint {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(quoteOutput{
		Price:        q.Price,
		Currency:     "VND",
		VehicleClass: string(vehicle),
		FareModel:    cfg.Model(),
		Quote:        q,
	})
}

func newEngine(ctx context.Context, opts *quoteOptions, logger zerolog.Logger) (*quote.Engine, func(), error) {
	provider := strings.ToLower(opts.provider)
	cfg := &config.Config{
		RoutingProvider: provider,
		RoutingTimeout:  opts.timeout,
		AvoidTolls:      !opts.allowTolls,
	}
	switch provider {
	case config.ProviderGoogle:
		cfg.GoogleMapsAPIKey = firstNonEmpty(opts.apiKey, os.Getenv("GOOGLE_MAPS_API_KEY"))
	case config.ProviderORS:
		cfg.ORSAPIKey = firstNonEmpty(opts.apiKey, os.Getenv("ORS_API_KEY"))
	case config.ProviderNone:
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", opts.provider)
	}
	if cfg.RoutingTimeout > config.MaxRoutingTimeout {
		cfg.RoutingTimeout = config.MaxRoutingTimeout
	}

	routingStack, err := app.NewRouting(ctx, cfg, resilience.NewRegistry(), logger)
	if err != nil {
		return nil, nil, err
	}
	engine := quote.NewEngine(quote.Config{
		Resolver: distance.NewResolver(distance.ResolverConfig{Adapter: routingStack.Adapter, Logger: logger}),
		Logger:   logger,
	})
	return engine, func() { _ = routingStack.Close() }, nil
}

func fareConfig(opts *quoteOptions) (fare.Config, error) {
	if opts.tiers == "" {
		cfg := fare.FlatConfig{
			BasePrice:  opts.base,
			PricePerKm: opts.perKm,
			MinPrice:   opts.minPrice,
			MaxPrice:   opts.maxPrice,
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	tiers, err := parseTiers(opts.tiers)
	if err != nil {
		return nil, err
	}
	cfg, err := fare.NewTieredConfig(opts.base, tiers)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func tripRequest(opts *quoteOptions, distanceGiven bool) (trip.Request, error) {
	req := trip.Request{OriginAddress: opts.fromAddress, DestinationAddress: opts.toAddress}
	if distanceGiven {
		req.DistanceKm = opts.distanceKm
		req.DurationMinutes = opts.durationMin
		return req, nil
	}

	if opts.from == "" || opts.to == "" {
		return req, fmt.Errorf("either --distance or both --from and --to are required")
	}
	origin, err := parsePoint(opts.from)
	if err != nil {
		return req, fmt.Errorf("--from: %w", err)
	}
	destination, err := parsePoint(opts.to)
	if err != nil {
		return req, fmt.Errorf("--to: %w", err)
	}
	req.Origin, req.Destination = &origin, &destination
	return req, nil
}

// parsePoint reads "lat,lon".
func parsePoint(s string) (geo.Point, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("%q is not lat,lon", s)
	}
	var (
		p   geo.Point
		err error
	)
	if p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return geo.Point{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	if p.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64); err != nil {
		return geo.Point{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	if err := p.Validate(); err != nil {
		return geo.Point{}, err
	}
	return p, nil
}

// parseTiers reads "from-to:rate" bands separated by commas; an empty upper
// bound is open-ended.
func parseTiers(s string) ([]fare.PriceTier, error) {
	var tiers []fare.PriceTier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		span, rate, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("tier %q: want from-to:rate", part)
		}
		from, to, ok := strings.Cut(span, "-")
		if !ok {
			return nil, fmt.Errorf("tier %q: want from-to:rate", part)
		}

		var (
			tier fare.PriceTier
			err  error
		)
		if tier.FromKm, err = strconv.ParseFloat(strings.TrimSpace(from), 64); err != nil {
			return nil, fmt.Errorf("tier %q: from: %w", part, err)
		}
		if to = strings.TrimSpace(to); to != "" {
			upper, err := strconv.ParseFloat(to, 64)
			if err != nil {
				return nil, fmt.Errorf("tier %q: to: %w", part, err)
			}
			tier.ToKm = &upper
		}
		if tier.PricePerKm, err = strconv.ParseFloat(strings.TrimSpace(rate), 64); err != nil {
			return nil, fmt.Errorf("tier %q: rate: %w", part, err)
		}
		tiers = append(tiers, tier)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers in %q", s)
	}
	return tiers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newVehiclesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicle classes and their price multipliers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fare.Vehicles)
		},
	}
}
