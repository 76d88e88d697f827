package study

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rootyapp/rooty/internal/quiz"
)

const themeCacheKey = "study:themes"

// Cache is the Redis-backed theme list cache. The theme table changes
// rarely (weekly at most), so a short TTL keeps the hot path off Postgres
// without a manual invalidation story.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get returns the cached theme list, or (nil, nil) on a cache miss.
func (c *Cache) Get(ctx context.Context) ([]quiz.Theme, error) {
	raw, err := c.rdb.Get(ctx, themeCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var themes []quiz.Theme
	if err := json.Unmarshal(raw, &themes); err != nil {
		return nil, fmt.Errorf("decode cached themes: %w", err)
	}
	return themes, nil
}

func (c *Cache) Set(ctx context.Context, themes []quiz.Theme) error {
	raw, err := json.Marshal(themes)
	if err != nil {
		return fmt.Errorf("encode themes: %w", err)
	}
	if err := c.rdb.Set(ctx, themeCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
