package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/trip"
)

// DistanceQuerier asks the routing provider for one pair. The routing cache
// sits behind it, so a successful query leaves the pair cached.
type DistanceQuerier interface {
	Query(ctx context.Context, origin, destination geo.Point) (*trip.Estimate, error)
}

// WarmupJobConfig holds configuration for creating a WarmupJob.
type WarmupJobConfig struct {
	Config  WarmupConfig
	Querier DistanceQuerier
	Metrics *Metrics
	Logger  zerolog.Logger
}

// WarmupJob refreshes cached directions for popular pairs.
type WarmupJob struct {
	config  WarmupConfig
	querier DistanceQuerier
	metrics *Metrics
	logger  zerolog.Logger

	mu   sync.RWMutex
	last *WarmupResult
}

// NewWarmupJob creates a warm-up job.
func NewWarmupJob(cfg WarmupJobConfig) *WarmupJob {
	config := cfg.Config
	if len(config.Pairs) == 0 {
		config.Pairs = DefaultWarmupPairs()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 3
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &WarmupJob{
		config:  config,
		querier: cfg.Querier,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// WarmupResult summarizes one run.
type WarmupResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalPairs int
	Successful int
	Failed     int
	Skipped    int
	Errors     []WarmupError
}

// WarmupError records a failed pair.
type WarmupError struct {
	Pair  string
	Error string
}

type pairResult struct {
	pair    WarmupPair
	err     error
	skipped bool
}

// Run queries every pair with bounded concurrency. Pairs left when ctx ends
// are counted as skipped.
func (j *WarmupJob) Run(ctx context.Context) *WarmupResult {
	start := time.Now()
	pairs := j.config.Ordered()
	result := &WarmupResult{StartTime: start, TotalPairs: len(pairs)}

	j.logger.Info().
		Int("total_pairs", len(pairs)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting routing warm-up")

	work := make(chan WarmupPair, len(pairs))
	results := make(chan pairResult, len(pairs))

	var wg sync.WaitGroup
	for range j.config.Concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				results <- j.warm(ctx, p)
			}
		}()
	}

	for _, p := range pairs {
		work <- p
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		switch {
		case r.skipped:
			result.Skipped++
		case r.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, WarmupError{Pair: r.pair.Name, Error: r.err.Error()})
		default:
			result.Successful++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()
	j.metrics.warmup(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Msg("routing warm-up completed")

	return result
}

func (j *WarmupJob) warm(ctx context.Context, p WarmupPair) pairResult {
	if ctx.Err() != nil || j.querier == nil {
		return pairResult{pair: p, skipped: true}
	}

	pairCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	est, err := j.querier.Query(pairCtx, p.Origin, p.Destination)
	if err != nil {
		j.logger.Warn().Err(err).Str("pair", p.Name).Msg("warm-up query failed")
		return pairResult{pair: p, err: err}
	}
	j.logger.Debug().Str("pair", p.Name).Float64("distance_km", est.DistanceKm).Msg("pair warmed")
	return pairResult{pair: p}
}

// Last returns the most recent result, or nil before the first run.
func (j *WarmupJob) Last() *WarmupResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}
