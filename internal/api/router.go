// Package api provides the HTTP API for TripFare.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/api/handler"
	"github.com/tripfare/tripfare/internal/api/middleware"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/quote"
)

// Engine is the quoting engine behind the pricing and ops endpoints.
type Engine interface {
	handler.Quoter
	handler.DistanceResolver
}

var _ Engine = (*quote.Engine)(nil)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Engine      Engine
	Catalog     handler.ConfigSelector
	Bookings    handler.BookingService
	Units       address.Repository
	FareConfigs fare.Repository
	FixedRoutes fixedroute.Repository
	Settings    Settings

	Registry *resilience.Registry
	Telegram handler.BotChecker
	Checks   []handler.Check
}

// Settings is the runtime settings store, satisfied by *settings.Service.
type Settings interface {
	handler.SettingsService
	handler.ProviderSwitch
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripfare-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	quoteHandler := handler.NewQuoteHandler(cfg.Engine, cfg.Catalog, cfg.Logger)
	bookingHandler := handler.NewBookingHandler(cfg.Bookings, cfg.Logger)
	addressHandler := handler.NewAddressHandler(cfg.Units, cfg.Logger)
	adminHandler := handler.NewAdminHandler(handler.AdminHandlerConfig{
		Configs:  cfg.FareConfigs,
		Routes:   cfg.FixedRoutes,
		Settings: cfg.Settings,
		Logger:   cfg.Logger,
	})
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Checks:    cfg.Checks,
		Resolver:  cfg.Engine,
		Switch:    cfg.Settings,
		Registry:  cfg.Registry,
		Telegram:  cfg.Telegram,
		Logger:    cfg.Logger,
	})

	// Quote endpoints may call the routing provider and get a budget per endpoint.
	quoteRateLimit := middleware.RateLimitByIPAndPath(middleware.QuoteRateLimit)       // 30 req/min
	bookingRateLimit := middleware.RateLimitByIP(middleware.BookingRateLimit)          // 10 req/min
	standardRateLimit := middleware.RateLimitByIPAndPath(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(quoteRateLimit).Get("/routing", opsHandler.RoutingStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(quoteRateLimit)
			r.Post("/quotes", quoteHandler.CreateQuote)
			r.Post("/fares:compute", quoteHandler.ComputeFare)
			r.Post("/fixed-routes:match", quoteHandler.MatchFixedRoute)
		})

		r.With(standardRateLimit).Get("/vehicle-types", quoteHandler.ListVehicleTypes)

		r.Route("/bookings", func(r chi.Router) {
			r.With(bookingRateLimit).Post("/", bookingHandler.CreateBooking)
			r.With(standardRateLimit).Get("/", bookingHandler.ListBookings)
			r.With(standardRateLimit).Get("/{bookingId}", bookingHandler.GetBooking)
		})

		r.Route("/address", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/provinces", addressHandler.ListProvinces)
			r.Get("/districts/{provinceCode}", addressHandler.ListDistricts)
			r.Get("/wards/{districtCode}", addressHandler.ListWards)
		})

		// Admin endpoints are unauthenticated and must only be exposed internally.
		r.Route("/admin", func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/fare-configs", func(r chi.Router) {
				r.Get("/", adminHandler.ListFareConfigs)
				r.Get("/{name}", adminHandler.GetFareConfig)
				r.Put("/{name}", adminHandler.PutFareConfig)
				r.Delete("/{name}", adminHandler.DeleteFareConfig)
			})

			r.Route("/fixed-routes", func(r chi.Router) {
				r.Get("/", adminHandler.ListFixedRoutes)
				r.Post("/", adminHandler.CreateFixedRoute)
				r.Route("/{routeId}", func(r chi.Router) {
					r.Get("/", adminHandler.GetFixedRoute)
					r.Put("/", adminHandler.UpdateFixedRoute)
					r.Delete("/", adminHandler.DeleteFixedRoute)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", adminHandler.ListSettings)
				r.Put("/", adminHandler.UpdateSettings)
				r.Post("/invalidate", adminHandler.InvalidateSettings)
				r.Delete("/{key}", adminHandler.ResetSetting)
			})

			r.Put("/bookings/{bookingId}/status", bookingHandler.UpdateBookingStatus)
		})
	})

	return r
}
