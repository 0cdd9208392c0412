package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qoratosh/travel-backend/internal/tour"
)

// Search responses are cached briefly so repeated storefront queries
// (the same landing-page filters hit by every visitor) skip the
// database. Admin writes flush the whole prefix, so the TTL only
// matters for writes made outside this service.
const defaultTTL = time.Minute

const keyPrefix = "tours:search:"

// Cache wraps a Redis client and provides typed get/set/flush for
// search result lists keyed by filter fingerprint.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with the default TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// key returns the Redis key for the given filter.
func key(f tour.Filter) string {
	return keyPrefix + f.Fingerprint()
}

// Get retrieves a cached result list for the filter.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) Get(ctx context.Context, f tour.Filter) ([]tour.Tour, error) {
	val, err := c.client.Get(ctx, key(f)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for filter %q: %w", f.Fingerprint(), err)
	}

	var tours []tour.Tour
	if err := json.Unmarshal([]byte(val), &tours); err != nil {
		return nil, fmt.Errorf("unmarshaling cached results for filter %q: %w", f.Fingerprint(), err)
	}

	return tours, nil
}

// Set stores a result list for the filter with the configured TTL. An
// empty result list is cached too; "no tours" is a valid answer.
func (c *Cache) Set(ctx context.Context, f tour.Filter, tours []tour.Tour) error {
	if tours == nil {
		tours = []tour.Tour{}
	}

	b, err := json.Marshal(tours)
	if err != nil {
		return fmt.Errorf("marshaling results for filter %q: %w", f.Fingerprint(), err)
	}

	if err := c.client.Set(ctx, key(f), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for filter %q: %w", f.Fingerprint(), err)
	}

	return nil
}

// Flush removes every cached search response. Called after any admin
// write so the next read sees it.
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting cache keys: %w", err)
	}
	return nil
}
