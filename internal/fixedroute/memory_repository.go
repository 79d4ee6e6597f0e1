package fixedroute

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	routes map[string]*Route
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory fixed route repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{routes: make(map[string]*Route)}
}

func (r *MemoryRepository) List(_ context.Context, activeOnly bool) ([]*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rt *Route) bool { return !activeOnly || rt.Active }), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return rt.clone(), nil
}

func (r *MemoryRepository) Create(_ context.Context, route *Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if route.ID == "" {
		route.ID = NewID()
	}
	route.Active = true
	route.CreatedAt = now
	route.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = route.clone()
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, route *Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.routes[route.ID]
	if !ok {
		return ErrRouteNotFound
	}
	route.CreatedAt = existing.CreatedAt
	route.UpdatedAt = time.Now().UTC()
	r.routes[route.ID] = route.clone()
	return nil
}

func (r *MemoryRepository) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.routes[id]
	if !ok {
		return ErrRouteNotFound
	}
	rt.Active = false
	rt.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) Search(_ context.Context, text string) ([]*Route, error) {
	needle := strings.ToLower(strings.TrimSpace(text))

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rt *Route) bool {
		if !rt.Active {
			return false
		}
		if needle == "" {
			return true
		}
		for _, field := range []string{rt.Name, rt.OriginText, rt.DestinationText, rt.Description} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}), nil
}

// collect copies matching routes, newest first. Callers hold the lock.
func (r *MemoryRepository) collect(keep func(*Route) bool) []*Route {
	var out []*Route
	for _, rt := range r.routes {
		if keep(rt) {
			out = append(out, rt.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
