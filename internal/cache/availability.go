// Package cache provides optional Redis caching of availability responses.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canchero/internal/slots"
)

// AvailabilityCache stores computed slot lists keyed by court and local day.
// A nil cache (redis not configured) is a no-op.
type AvailabilityCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a cache. Returns nil when redisClient is nil or ttl is not
// positive, which callers treat as "caching disabled".
func New(redisClient *redis.Client, ttl time.Duration) *AvailabilityCache {
	if redisClient == nil || ttl <= 0 {
		return nil
	}
	return &AvailabilityCache{redis: redisClient, ttl: ttl}
}

func key(courtID, date string) string {
	return fmt.Sprintf("avail:%s:%s", courtID, date)
}

// Get returns the cached slots for court/date, or ok=false on miss or any
// redis error. Cache failures degrade to a recompute, never to an error.
func (c *AvailabilityCache) Get(ctx context.Context, courtID, date string) ([]slots.Slot, bool) {
	if c == nil {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key(courtID, date)).Result()
	if err != nil {
		return nil, false
	}
	var cached []slots.Slot
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

// Set stores the slots for court/date with the configured TTL.
func (c *AvailabilityCache) Set(ctx context.Context, courtID, date string, value []slots.Slot) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.redis.Set(ctx, key(courtID, date), data, c.ttl)
}

// Invalidate drops the cached slots for court/date. Called after any
// booking write touching that court and day.
func (c *AvailabilityCache) Invalidate(ctx context.Context, courtID, date string) {
	if c == nil {
		return
	}
	c.redis.Del(ctx, key(courtID, date))
}
