package fare

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	configs map[string]*NamedConfig
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a repository holding seed.
func NewMemoryRepository(seed ...*NamedConfig) *MemoryRepository {
	r := &MemoryRepository{configs: make(map[string]*NamedConfig)}
	for _, c := range seed {
		r.configs[c.Name] = clone(c)
	}
	return r
}

func (r *MemoryRepository) Get(_ context.Context, name string) (*NamedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[name]
	if !ok {
		return nil, ErrConfigNotFound
	}
	return clone(c), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*NamedConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*NamedConfig, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, cfg *NamedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	stored := clone(cfg)
	stored.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.Name] = stored
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[name]; !ok {
		return ErrConfigNotFound
	}
	delete(r.configs, name)
	return nil
}

// clone deep-copies c so callers cannot mutate stored tiers.
func clone(c *NamedConfig) *NamedConfig {
	cp := *c
	if c.Flat != nil {
		flat := *c.Flat
		cp.Flat = &flat
	}
	if c.Tiered != nil {
		tiered := TieredConfig{BasePrice: c.Tiered.BasePrice, Tiers: make([]PriceTier, len(c.Tiered.Tiers))}
		for i, t := range c.Tiered.Tiers {
			tiered.Tiers[i] = t
			if t.ToKm != nil {
				to := *t.ToKm
				tiered.Tiers[i].ToKm = &to
			}
		}
		cp.Tiered = &tiered
	}
	return &cp
}
