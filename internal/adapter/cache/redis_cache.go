package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/port"
	"github.com/redis/go-redis/v9"
)

var _ port.Cache = (*RedisCache)(nil)

// RedisCache publishes book snapshots for readers outside the engine process.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func key(symbol string) string { return "ob:" + symbol }

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (c *RedisCache) SetOrderbook(ctx context.Context, symbol string, ob *domain.BookSnapshot) error {
	b, err := json.Marshal(ob)
	if err != nil {
		return fmt.Errorf("redis: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, key(symbol), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

func (c *RedisCache) GetOrderbook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	b, err := c.client.Get(ctx, key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get snapshot: %w", err)
	}
	var ob domain.BookSnapshot
	if err := json.Unmarshal(b, &ob); err != nil {
		return nil, fmt.Errorf("redis: decode snapshot: %w", err)
	}
	return &ob, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
