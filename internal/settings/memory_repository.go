package settings

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	values map[string]*Setting
}

// NewMemoryRepository creates a repository seeded with the given settings.
func NewMemoryRepository(seed ...*Setting) *MemoryRepository {
	r := &MemoryRepository{values: make(map[string]*Setting, len(seed))}
	for _, s := range seed {
		r.values[s.Key] = s.clone()
	}
	return r
}

// Get retrieves a single setting by key.
func (r *MemoryRepository) Get(_ context.Context, key string) (*Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.values[key]
	if !ok {
		return nil, ErrSettingNotFound
	}
	return s.clone(), nil
}

// All retrieves every stored setting.
func (r *MemoryRepository) All(_ context.Context) (map[string]*Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*Setting, len(r.values))
	for k, v := range r.values {
		out[k] = v.clone()
	}
	return out, nil
}

// Set creates or updates settings.
func (r *MemoryRepository) Set(_ context.Context, settings ...*Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, s := range settings {
		c := s.clone()
		c.UpdatedAt = now
		r.values[s.Key] = c
	}
	return nil
}

// Delete removes a setting.
func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.values[key]; !ok {
		return ErrSettingNotFound
	}
	delete(r.values, key)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
