package routing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// CacheEntry is a memoized provider answer.
type CacheEntry struct {
	Response  *DirectionsResponse `json:"response"`
	FetchedAt time.Time           `json:"fetched_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Fresh reports whether the entry can be served without asking the provider.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Cache stores directions keyed by quantized coordinates.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, bool, error)
	// Set stores the entry; retention is how long it may be kept for stale-if-error.
	Set(ctx context.Context, key string, entry *CacheEntry, retention time.Duration) error
}

// CachedProviderConfig holds configuration for the caching decorator.
type CachedProviderConfig struct {
	// Provider is the upstream directions provider.
	Provider Provider

	// Cache stores responses. Defaults to an in-memory cache.
	Cache Cache

	// Logger for cache operations.
	Logger zerolog.Logger

	// CacheTTL is how long a response is served without refetching (default: 30 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.001 ~ 110m).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 6 hours).
	StaleIfErrorTTL time.Duration

	// FetchTimeout bounds the upstream call shared by every caller waiting on
	// the same key (default: 10 seconds).
	FetchTimeout time.Duration

	// Metrics is optional.
	Metrics *Metrics
}

// CachedProvider memoizes a Provider. It never holds a lock while the upstream call is in flight.
type CachedProvider struct {
	provider        Provider
	cache           Cache
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	fetchTimeout    time.Duration
	metrics         *Metrics
	group           singleflight.Group
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps cfg.Provider with a read-mostly cache.
func NewCachedProvider(cfg CachedProviderConfig) *CachedProvider {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.001
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 6 * time.Hour
	}

	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 10 * time.Second
	}

	cache := cfg.Cache
	if cache == nil {
		cache = NewMemoryCache(0)
	}

	return &CachedProvider{
		provider:        cfg.Provider,
		cache:           cache,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		fetchTimeout:    fetchTimeout,
		metrics:         cfg.Metrics,
	}
}

// Name returns the name of the wrapped provider.
func (p *CachedProvider) Name() string {
	return p.provider.Name()
}

// GetDirections returns cached directions when fresh, otherwise asks the provider.
func (p *CachedProvider) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if err := ValidateRequest(p.provider.Name(), req); err != nil {
		return nil, err
	}

	key := p.cacheKey(req)

	cached, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn().Err(err).Str("cache_key", key).Msg("routing cache read failed")
	}
	if ok && cached.Fresh(time.Now()) {
		p.logger.Debug().Str("cache_key", key).Msg("cache hit for directions")
		p.metrics.recordCache(ctx, p.provider.Name(), true)
		return cached.Response, nil
	}
	p.metrics.recordCache(ctx, p.provider.Name(), false)

	// The fetch outlives whichever caller started it; others may be waiting on it.
	ch := p.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()
		return p.fetch(fetchCtx, req, key)
	})

	select {
	case <-ctx.Done():
		return nil, &Error{
			Provider: p.provider.Name(),
			Code:     "CANCELLED",
			Message:  "directions request abandoned",
			Err:      fmt.Errorf("%w: %w", ErrProviderUnavailable, ctx.Err()),
		}
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(*DirectionsResponse), nil
		}
		if ok && time.Now().Before(cached.FetchedAt.Add(p.staleIfErrorTTL)) {
			p.logger.Warn().
				Err(res.Err).
				Time("fetched_at", cached.FetchedAt).
				Str("cache_key", key).
				Msg("serving stale directions due to provider error")
			p.metrics.recordStale(ctx, p.provider.Name())
			return cached.Response, nil
		}
		return nil, res.Err
	}
}

func (p *CachedProvider) fetch(ctx context.Context, req DirectionsRequest, key string) (*DirectionsResponse, error) {
	p.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Str("provider", p.provider.Name()).
		Msg("fetching directions from provider")

	start := time.Now()
	resp, err := p.provider.GetDirections(ctx, req)
	p.metrics.recordRequest(ctx, p.provider.Name(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &CacheEntry{
		Response:  resp,
		FetchedAt: now,
		ExpiresAt: now.Add(p.cacheTTL),
	}
	if err := p.cache.Set(ctx, key, entry, p.staleIfErrorTTL); err != nil {
		p.logger.Warn().Err(err).Str("cache_key", key).Msg("routing cache write failed")
	}

	return resp, nil
}

// cacheKey quantizes both endpoints to grid cells.
// Format: {mode}:{tolls}:{originLatCell},{originLonCell}:{destLatCell},{destLonCell}.
func (p *CachedProvider) cacheKey(req DirectionsRequest) string {
	cell := func(v float64) int64 {
		return int64(math.Floor(v / p.cacheGridSize))
	}
	tolls := "tolls"
	if req.AvoidTolls {
		tolls = "notolls"
	}
	return fmt.Sprintf("%s:%s:%d,%d:%d,%d",
		req.Mode, tolls,
		cell(req.Origin.Lat), cell(req.Origin.Lon),
		cell(req.Destination.Lat), cell(req.Destination.Lon),
	)
}
