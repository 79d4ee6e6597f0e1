package routing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/geo"
)

// mockProvider is a mock routing provider for testing.
type mockProvider struct {
	name      string
	mu        sync.Mutex
	response  *DirectionsResponse
	err       error
	callCount atomic.Int32
	delay     time.Duration
}

func (m *mockProvider) GetDirections(ctx context.Context, _ DirectionsRequest) (*DirectionsResponse, error) {
	m.callCount.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		name: "test-provider",
		response: &DirectionsResponse{
			Routes:    []Route{{DistanceMeters: 9870, DurationSeconds: 1320, Summary: "Nguyễn Văn Linh"}},
			Provider:  "test-provider",
			FetchedAt: time.Now(),
		},
	}
}

func saigonRequest() DirectionsRequest {
	return DirectionsRequest{
		Origin:      geo.Point{Lat: 10.762622, Lon: 106.660172},
		Destination: geo.Point{Lat: 10.732599, Lon: 106.719749},
		Mode:        ModeDriving,
		AvoidTolls:  true,
	}
}

func TestCachedProvider_CacheMissThenHit(t *testing.T) {
	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	resp, err := cp.GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, 9870, resp.Routes[0].DistanceMeters)

	_, err = cp.GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err)

	assert.Equal(t, int32(1), provider.callCount.Load(), "second call should be served from cache")
}

func TestCachedProvider_GridCaching(t *testing.T) {
	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop(), CacheGridSize: 0.01})

	req := saigonRequest()
	_, err := cp.GetDirections(context.Background(), req)
	require.NoError(t, err)

	// A few meters away falls into the same cell.
	req.Origin.Lat += 0.0001
	_, err = cp.GetDirections(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.callCount.Load())

	// Far enough to change cell.
	req.Origin.Lat += 0.05
	_, err = cp.GetDirections(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.callCount.Load())
}

func TestCachedProvider_TollPreferenceIsPartOfKey(t *testing.T) {
	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	req := saigonRequest()
	_, err := cp.GetDirections(context.Background(), req)
	require.NoError(t, err)

	req.AvoidTolls = false
	_, err = cp.GetDirections(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(2), provider.callCount.Load())
}

func TestCachedProvider_ProviderErrorWithoutCache(t *testing.T) {
	provider := newMockProvider()
	provider.err = &Error{Provider: "test-provider", Code: "SERVER_503", Message: "down", Err: ErrProviderUnavailable}
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := cp.GetDirections(context.Background(), saigonRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestCachedProvider_StaleIfError(t *testing.T) {
	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{
		Provider:        provider,
		Logger:          zerolog.Nop(),
		CacheTTL:        time.Millisecond,
		StaleIfErrorTTL: time.Hour,
	})

	_, err := cp.GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	provider.setErr(errors.New("connection refused"))

	resp, err := cp.GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err, "stale entry should be served")
	assert.Equal(t, 9870, resp.Routes[0].DistanceMeters)
	assert.Equal(t, int32(2), provider.callCount.Load())
}

func TestCachedProvider_InvalidCoordinates(t *testing.T) {
	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	req := saigonRequest()
	req.Destination.Lat = 120

	_, err := cp.GetDirections(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "INVALID_DESTINATION", rerr.Code)
	assert.Equal(t, int32(0), provider.callCount.Load())
}

func TestCachedProvider_CallerCancellation(t *testing.T) {
	provider := newMockProvider()
	provider.delay = time.Second
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := cp.GetDirections(ctx, saigonRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCachedProvider_ConcurrentRequestsShareOneFetch(t *testing.T) {
	provider := newMockProvider()
	provider.delay = 50 * time.Millisecond
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cp.GetDirections(context.Background(), saigonRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestCachedProvider_SharedFetchSurvivesFirstCallerTimeout(t *testing.T) {
	provider := newMockProvider()
	provider.delay = 200 * time.Millisecond
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Logger: zerolog.Nop()})

	shortCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var (
		wg    sync.WaitGroup
		errA  error
		respB *DirectionsResponse
		errB  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errA = cp.GetDirections(shortCtx, saigonRequest())
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		respB, errB = cp.GetDirections(context.Background(), saigonRequest())
	}()
	wg.Wait()

	assert.ErrorIs(t, errA, ErrProviderUnavailable)
	require.NoError(t, errB)
	require.NotNil(t, respB)
	assert.Equal(t, 9870, respB.Routes[0].DistanceMeters)
	assert.Equal(t, int32(1), provider.callCount.Load())

	// The answer fetched for both callers is cached.
	_, err := cp.GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestCachedProvider_FetchTimeout(t *testing.T) {
	provider := newMockProvider()
	provider.delay = time.Second
	cp := NewCachedProvider(CachedProviderConfig{
		Provider:     provider,
		Logger:       zerolog.Nop(),
		FetchTimeout: 30 * time.Millisecond,
	})

	start := time.Now()
	_, err := cp.GetDirections(context.Background(), saigonRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestMemoryCache_Eviction(t *testing.T) {
	c := NewMemoryCache(time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", &CacheEntry{Response: &DirectionsResponse{}}, time.Millisecond))
	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(5 * time.Millisecond)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "entry past retention is not served")

	require.NoError(t, c.Set(ctx, "b", &CacheEntry{Response: &DirectionsResponse{}}, time.Hour))
	assert.Equal(t, 1, c.Len(), "expired entry removed on cleanup")
}

func TestCachedProvider_WithMetrics(t *testing.T) {
	metrics, err := NewMetrics()
	require.NoError(t, err)

	provider := newMockProvider()
	cp := NewCachedProvider(CachedProviderConfig{Provider: provider, Metrics: metrics, Logger: zerolog.Nop()})

	for range 3 {
		_, err := cp.GetDirections(context.Background(), saigonRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), provider.callCount.Load())
}
