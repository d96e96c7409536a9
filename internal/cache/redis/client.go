package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/pkg/logger"
)

// Client caches aggregate API responses. All methods are safe on a nil
// receiver so the cache can be disabled by simply not configuring Redis.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	if addr == "" {
		logger.Info("Redis not configured, stats caching disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// SetStats stores a JSON-serializable aggregate under the given key.
func (c *Client) SetStats(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached value: %w", err)
	}

	if err := c.client.Set(ctx, "stats:"+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set stats cache: %w", err)
	}

	logger.Debug("Stats cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// GetStats loads a cached aggregate into value, reporting whether the key
// was present.
func (c *Client) GetStats(ctx context.Context, key string, value interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, "stats:"+key).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("stats").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get stats cache: %w", err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	metrics.CacheHits.WithLabelValues("stats").Inc()
	logger.Debug("Stats cache hit", zap.String("key", key))
	return true, nil
}

// Invalidate drops all cached aggregates, called after analysis writes.
func (c *Client) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, "stats:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Stats cache invalidated")
	return nil
}
