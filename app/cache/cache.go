// Package cache keeps computed page fragments in process memory. A nil *Cache
// is valid and caches nothing.
package cache

import (
	"context"
	"fmt"
	"time"

	"blogsite/app/metrics"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	MaxCost int64         `mapstructure:"max_cost"`
}

// Cache stores msgpack encoded values in a ristretto backed gocache manager.
type Cache struct {
	client  *ristretto.Cache
	manager *cache.Cache[any]
	marshal *marshaler.Marshaler
	ttl     time.Duration
}

// New returns nil when caching is disabled.
func New(cfg Config) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxCost * 10,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
		// Entries cost one unit each so MaxCost bounds the entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	manager := cache.New[any](ristretto_store.NewRistretto(client))
	return &Cache{
		client:  client,
		manager: manager,
		marshal: marshaler.New(manager),
		ttl:     cfg.TTL,
	}, nil
}

// Get decodes the value stored under key into target and reports whether it
// was present.
func (c *Cache) Get(ctx context.Context, key string, target any) bool {
	if c == nil {
		return false
	}
	if _, err := c.marshal.Get(ctx, key, target); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return true
}

// Set stores value under key labelled with tags.
func (c *Cache) Set(ctx context.Context, key string, value any, tags ...string) {
	if c == nil {
		return
	}
	err := c.marshal.Set(ctx, key, value,
		store.WithExpiration(c.ttl),
		store.WithCost(1),
		store.WithTags(tags),
	)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache value")
		return
	}
	c.client.Wait()
}

// Invalidate drops every entry labelled with one of tags.
func (c *Cache) Invalidate(ctx context.Context, tags ...string) {
	if c == nil || len(tags) == 0 {
		return
	}
	if err := c.manager.Invalidate(ctx, store.WithInvalidateTags(tags)); err != nil {
		log.Warn().Err(err).Strs("tags", tags).Msg("Failed to invalidate cache")
	}
	c.client.Wait()
}

// Clear drops everything.
func (c *Cache) Clear(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.manager.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear cache")
	}
}
