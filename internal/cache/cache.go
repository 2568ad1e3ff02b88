// FilePath: internal/cache/cache.go

// Package cache provides a best-effort Redis cache for time-bounded readings
// queries. Dashboards poll the same windows repeatedly; entries live for a
// short TTL matching the original deployment's 60s response cache. Cache
// errors are logged and treated as misses, never surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/bokashilab/sensorhub/internal/config"
	"github.com/bokashilab/sensorhub/internal/models"
)

const defaultTTL = 60 * time.Second

// ReadingsCache caches window query results in Redis.
type ReadingsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReadingsCache connects to Redis using the given configuration.
func NewReadingsCache(cfg config.RedisConfig) (*ReadingsCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	nuts.L.Infof("[ReadingsCache] Connected to %s:%d (ttl %v)", cfg.Host, cfg.Port, ttl)
	return &ReadingsCache{rdb: rdb, ttl: ttl}, nil
}

// Key derives the cache key for a pair of optional window bounds.
func Key(start, end *time.Time) string {
	s, e := "open", "open"
	if start != nil {
		s = start.UTC().Format(time.RFC3339)
	}
	if end != nil {
		e = end.UTC().Format(time.RFC3339)
	}
	return "readings:" + s + ":" + e
}

// Get returns the cached readings for key, or false on miss or error.
func (c *ReadingsCache) Get(ctx context.Context, key string) ([]models.Reading, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			nuts.L.Warnf("[ReadingsCache] Get %s failed: %v", key, err)
		}
		return nil, false
	}

	var readings []models.Reading
	if err := json.Unmarshal(raw, &readings); err != nil {
		nuts.L.Warnf("[ReadingsCache] Corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	return readings, true
}

// Set stores the readings under key for the configured TTL. Best effort.
func (c *ReadingsCache) Set(ctx context.Context, key string, readings []models.Reading) {
	raw, err := json.Marshal(readings)
	if err != nil {
		nuts.L.Warnf("[ReadingsCache] Marshal for %s failed: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[ReadingsCache] Set %s failed: %v", key, err)
	}
}

// Close releases the Redis connection.
func (c *ReadingsCache) Close() error {
	return c.rdb.Close()
}
