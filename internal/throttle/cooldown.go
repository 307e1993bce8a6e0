package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown allows one action per key per TTL window. A nil client or a zero
// TTL disables it.
type Cooldown struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCooldown(client *redis.Client, prefix string, ttl time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, ttl: ttl}
}

// Allow claims the window for key, returning false while a previous claim is live.
func (c *Cooldown) Allow(ctx context.Context, key string) (bool, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.key(key), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown setnx: %w", err)
	}
	return ok, nil
}

// Release drops a claim, used when the guarded action failed.
func (c *Cooldown) Release(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("cooldown del: %w", err)
	}
	return nil
}

func (c *Cooldown) key(key string) string {
	return c.prefix + strings.ToLower(key)
}

// NewRedisClient connects to REDIS_URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
