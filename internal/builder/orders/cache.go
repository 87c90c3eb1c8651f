package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"invoice-builder/internal/builder/models"

	"github.com/redis/go-redis/v9"
)

// ============================================================
// Record cache
// ============================================================

const keyPrefix = "invoice-builder:order:"

// Cache: минимальное key-value хранилище для записей заказов.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache хранит записи в Redis.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSource читает через кэш. Ошибки кэша не мешают запросу к источнику.
type CachedSource struct {
	source Source
	cache  Cache
	ttl    time.Duration
}

func NewCachedSource(source Source, cache Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{source: source, cache: cache, ttl: ttl}
}

func (s *CachedSource) FetchByID(ctx context.Context, id string) (models.Record, error) {
	key := keyPrefix + id

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[ORDERS] Cache read failed for %s: %v", id, err)
	}
	if ok {
		var record models.Record
		if err := json.Unmarshal([]byte(raw), &record); err == nil {
			return record, nil
		}
		log.Printf("[ORDERS] Ignoring corrupt cache entry for %s", id)
	}

	record, err := s.source.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(record)
	if err == nil {
		err = s.cache.Set(ctx, key, string(data), s.ttl)
	}
	if err != nil {
		log.Printf("[ORDERS] Cache write failed for %s: %v", id, err)
	}
	return record, nil
}
