package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheTTL bounds how long a read value is served without asking the store.
const DefaultCacheTTL = 30 * time.Second

// ServiceConfig holds configuration for the settings service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
	CacheTTL   time.Duration
	Defaults   map[string]*Setting
}

type cached struct {
	setting *Setting
	expires time.Time
}

// Service reads settings through a TTL cache and falls back to defaults when
// the store has no entry or is unreachable.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration
	defaults map[string]*Setting
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]cached
}

// NewService creates a new settings service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	defaults := cfg.Defaults
	if defaults == nil {
		defaults = Defaults()
	}
	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: ttl,
		defaults: defaults,
		now:      time.Now,
		cache:    make(map[string]cached),
	}
}

// Get returns the setting under key, or its default, or nil if neither exists.
func (s *Service) Get(ctx context.Context, key string) *Setting {
	if v, ok := s.cached(key); ok {
		return v
	}

	if s.repo != nil {
		v, err := s.repo.Get(ctx, key)
		if err == nil {
			s.store(v)
			return v.clone()
		}
		if !errors.Is(err, ErrSettingNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read setting, using default")
			return s.fallback(key)
		}
	}

	def := s.fallback(key)
	if def != nil {
		s.store(def)
	}
	return def
}

// All returns every setting, stored values merged over defaults.
func (s *Service) All(ctx context.Context) map[string]*Setting {
	out := make(map[string]*Setting, len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v.clone()
	}
	if s.repo == nil {
		return out
	}

	stored, err := s.repo.All(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list settings, using defaults")
		return out
	}
	for k, v := range stored {
		out[k] = v
		s.store(v)
	}
	return out
}

// Set writes settings and refreshes the cache.
func (s *Service) Set(ctx context.Context, settings ...*Setting) error {
	if s.repo == nil {
		return errors.New("settings: no repository configured")
	}
	if err := s.repo.Set(ctx, settings...); err != nil {
		return err
	}
	now := s.now()
	for _, v := range settings {
		c := v.clone()
		c.UpdatedAt = now
		s.store(c)
	}
	s.logger.Info().Int("count", len(settings)).Msg("settings updated")
	return nil
}

// Reset deletes a stored value so the default applies again.
func (s *Service) Reset(ctx context.Context, key string) error {
	if s.repo == nil {
		return errors.New("settings: no repository configured")
	}
	err := s.repo.Delete(ctx, key)
	s.Invalidate()
	return err
}

// Invalidate drops every cached value.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cached)
}

// RoutingProviderEnabled reports whether the live routing provider may be called.
func (s *Service) RoutingProviderEnabled(ctx context.Context) bool {
	return s.Get(ctx, KeyRoutingProviderEnabled).Bool(true)
}

// ActiveFareConfig returns the name of the fare configuration used by default.
func (s *Service) ActiveFareConfig(ctx context.Context) string {
	return s.Get(ctx, KeyActiveFareConfig).String("default")
}

func (s *Service) fallback(key string) *Setting {
	if def, ok := s.defaults[key]; ok {
		return def.clone()
	}
	return nil
}

func (s *Service) cached(key string) (*Setting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cache[key]
	if !ok || s.now().After(c.expires) {
		return nil, false
	}
	return c.setting.clone(), true
}

func (s *Service) store(v *Setting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[v.Key] = cached{setting: v.clone(), expires: s.now().Add(s.cacheTTL)}
}
