package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "refdata:version"

// Cache stores option lists in Redis under versioned keys. Bumping the version
// invalidates every list at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client or a zero ttl disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func keyAt(name string, ver int64) string {
	return fmt.Sprintf("refdata:%s:%d", name, ver)
}

// Get returns the list cached under the current version.
func (c *Cache) Get(ctx context.Context, name string) ([]Option, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return nil, false, err
	}
	return c.GetVersion(ctx, name, ver)
}

// GetVersion returns the list cached under ver and whether it was present.
func (c *Cache) GetVersion(ctx context.Context, name string, ver int64) ([]Option, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	payload, err := c.client.Get(ctx, keyAt(name, ver)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var opts []Option
	if err := json.Unmarshal(payload, &opts); err != nil {
		return nil, false, err
	}
	return opts, true, nil
}

// SetVersion stores a list under ver. Callers pass the version read before
// fetching, so a fetch that straddles a Bump lands under the retired version.
func (c *Cache) SetVersion(ctx context.Context, name string, ver int64, opts []Option) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyAt(name, ver), raw, c.ttl).Err()
}

// Bump invalidates every cached list.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
