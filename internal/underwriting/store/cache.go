package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "uw:assessment:"

// Cache holds recent assessments keyed by application and input hash.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// CacheKey is uw:assessment:<applicationId>:<inputHash>.
func CacheKey(applicationID, inputHash string) string {
	return cacheKeyPrefix + applicationID + ":" + inputHash
}

// Get returns ErrNotFound on a miss. An undecodable entry counts as a miss.
func (c *Cache) Get(ctx context.Context, applicationID, inputHash string) (*Record, error) {
	val, err := c.client.Get(ctx, CacheKey(applicationID, inputHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (c *Cache) Set(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cached assessment: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(rec.ApplicationID, rec.InputHash), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
