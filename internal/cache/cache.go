/*
Copyright 2025 Fathom Energy Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/cache/v9"

	"github.com/fathomenergy/curvetrace/config"
	redis_db "github.com/fathomenergy/curvetrace/internal/redis-db"
)

// ErrCacheMiss is returned by Get when no value is stored under the key, so
// a hit is recognizable by a nil error even when the cached value is a zero
// value.
var ErrCacheMiss = cache.ErrCacheMiss

// Cache provides the read-projection cache used for fresh-group and
// health-score lookups. Implementations must tolerate concurrent use.
type Cache interface {
	// Set stores a value under key for the given time-to-live.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get loads a value into data, or returns ErrCacheMiss when the key is
	// absent.
	Get(ctx context.Context, key string, data interface{}) error

	// Delete removes a key. Used by mutations to invalidate projections.
	Delete(ctx context.Context, key string) error
}

// Key builds a namespaced cache key from its parts.
func Key(parts ...string) string {
	return "curvetrace:" + strings.Join(parts, ":")
}

// RedisCache implements Cache on Redis with a local TinyLFU tier in front.
type RedisCache struct {
	cache *cache.Cache
}

// NewCache connects to the configured Redis instance and returns a Cache.
func NewCache() (Cache, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	ca, err := newRedisCache([]string{fmt.Sprintf("redis://%s", cfg.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	return ca, nil
}

// cacheSize is the entry budget of the local tier.
const cacheSize = 128000

func newRedisCache(addresses []string) (*RedisCache, error) {
	client, err := redis_db.NewRedisClient(addresses)
	if err != nil {
		return nil, err
	}

	c := cache.New(&cache.Options{
		Redis:      client.Client(),
		LocalCache: cache.NewTinyLFU(cacheSize, 1*time.Minute),
	})

	return &RedisCache{cache: c}, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, data interface{}, ttl time.Duration) error {
	return r.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: data,
		TTL:   ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string, data interface{}) error {
	return r.cache.Get(ctx, key, data)
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}
