// Package cache wraps go-redis as an optional read cache for hot
// content lookups. A nil *Client is valid and disables caching, so
// callers never branch on configuration.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 60 * time.Second

// Client wraps go-redis for the application.
type Client struct {
	rdb *redis.Client
}

// Connect creates a Redis client and verifies connectivity.
func Connect(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Key builds a namespaced cache key.
func Key(parts ...string) string {
	key := "atelier:content"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get retrieves a cached value. Returns ("", false) on miss, disabled
// cache, or any backend error: cache failures never surface.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a value with a TTL. Best-effort: errors are dropped.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, key, value, ttl).Err()
}

// InvalidateSite drops every cached entry for a site.
func (c *Client) InvalidateSite(ctx context.Context, site string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, Key(site)+":*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
