package resilience

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

// Guard runs non-HTTP provider calls (SDK clients) through a circuit breaker.
// It never retries.
type Guard[T any] struct {
	name     string
	breaker  *gobreaker.CircuitBreaker[T]
	registry *Registry
}

// NewGuard creates a guard and registers it when registry is non-nil.
func NewGuard[T any](cfg CircuitBreakerConfig, registry *Registry) *Guard[T] {
	g := &Guard[T]{
		name:     cfg.Name,
		breaker:  NewCircuitBreaker[T](cfg),
		registry: registry,
	}
	if registry != nil {
		registry.Register(cfg.Name, g)
	}
	return g
}

// Execute calls fn unless the breaker is open.
func (g *Guard[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	res, err := g.breaker.Execute(func() (T, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrCircuitOpen
	}

	if g.registry != nil {
		if err != nil {
			g.registry.RecordFailure(g.name, err)
		} else {
			g.registry.RecordSuccess(g.name)
		}
	}
	return res, err
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (g *Guard[T]) CircuitBreakerState() gobreaker.State {
	return g.breaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (g *Guard[T]) CircuitBreakerCounts() gobreaker.Counts {
	return g.breaker.Counts()
}

// Name returns the guard name used for the breaker and registry.
func (g *Guard[T]) Name() string {
	return g.name
}
