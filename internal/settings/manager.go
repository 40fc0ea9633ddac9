package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/samadammeek/core-geonetwork/internal/metrics"
	"github.com/samadammeek/core-geonetwork/internal/repository"
)

// ErrUnknown is returned for settings with neither a stored value nor a default.
var ErrUnknown = errors.New("settings: unknown setting")

// ErrCacheMiss is returned by a Cache that holds no value for a key.
var ErrCacheMiss = errors.New("settings: cache miss")

// Store persists settings. *repository.SettingsRepository satisfies it.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// Cache holds recently read setting values.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Manager resolves setting values: cache first, then the store, then the
// configured defaults.
type Manager struct {
	store    Store
	cache    Cache
	ttl      time.Duration
	defaults map[string]string
	logger   zerolog.Logger
}

// NewManager builds a Manager. cache may be nil; a zero ttl disables caching.
func NewManager(store Store, cache Cache, ttl time.Duration, defaults map[string]string, logger zerolog.Logger) *Manager {
	if defaults == nil {
		defaults = map[string]string{}
	}
	return &Manager{
		store:    store,
		cache:    cache,
		ttl:      ttl,
		defaults: defaults,
		logger:   logger.With().Str("component", "settings").Logger(),
	}
}

// Value returns the current value of a setting.
func (m *Manager) Value(ctx context.Context, name string) (string, error) {
	if m.cachingEnabled() {
		value, err := m.cache.Get(ctx, cacheKey(name))
		switch {
		case err == nil:
			metrics.SettingsCacheLookups.WithLabelValues("hit").Inc()
			return value, nil
		case errors.Is(err, ErrCacheMiss):
			metrics.SettingsCacheLookups.WithLabelValues("miss").Inc()
		default:
			metrics.SettingsCacheLookups.WithLabelValues("error").Inc()
			m.logger.Warn().Err(err).Str("setting", name).Msg("cache read failed")
		}
	}

	value, err := m.store.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("read setting %s: %w", name, err)
		}
		def, ok := m.defaults[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknown, name)
		}
		value = def
	}

	if m.cachingEnabled() {
		if err := m.cache.Set(ctx, cacheKey(name), value, m.ttl); err != nil {
			m.logger.Warn().Err(err).Str("setting", name).Msg("cache write failed")
		}
	}
	return value, nil
}

// Set stores a setting value and evicts it from the cache.
func (m *Manager) Set(ctx context.Context, name, value string) error {
	if err := m.store.Set(ctx, name, value); err != nil {
		return fmt.Errorf("write setting %s: %w", name, err)
	}
	if m.cachingEnabled() {
		if err := m.cache.Del(ctx, cacheKey(name)); err != nil {
			m.logger.Warn().Err(err).Str("setting", name).Msg("cache eviction failed")
		}
	}
	m.logger.Info().Str("setting", name).Str("value", value).Msg("setting updated")
	return nil
}

func (m *Manager) cachingEnabled() bool {
	return m.cache != nil && m.ttl > 0
}

func cacheKey(name string) string {
	return "settings:" + name
}
