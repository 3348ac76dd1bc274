// Package redis holds the two pieces of Redis state the order service keeps:
// replayable responses for retried order submissions and the cron lease.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/config"
	"github.com/BanSimplified567/isladelcafe2025-sub000/pkg/logger"
)

const namespace = "idc"

// releaseLease deletes the lease only while ARGV[1] still owns it.
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var errNotConnected = errors.New("redis: client not connected")

// IdempotencyStore keeps serialized responses per request scope.
type IdempotencyStore interface {
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, payload string, ttl time.Duration) error
}

type Client struct {
	rdb redis.UniversalClient
}

// New dials Redis and fails fast when the server does not answer.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := dialOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis ready")
	}
	return &Client{rdb: rdb}, nil
}

// Wrap adapts an existing go-redis client.
func Wrap(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb}
}

func dialOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: strings.TrimSpace(cfg.Address), Password: cfg.Password, DB: cfg.DB}
	if raw := strings.TrimSpace(cfg.URL); raw != "" {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		if parsed.DB == 0 {
			parsed.DB = cfg.DB
		}
		opts = parsed
	}
	if opts.Addr == "" {
		return nil, errors.New("redis: url or address required")
	}

	opts.PoolSize = orDefault(opts.PoolSize, cfg.PoolSize)
	opts.MinIdleConns = orDefault(opts.MinIdleConns, cfg.MinIdleConns)
	opts.DialTimeout = orDefault(opts.DialTimeout, cfg.DialTimeout)
	opts.ReadTimeout = orDefault(opts.ReadTimeout, cfg.ReadTimeout)
	opts.WriteTimeout = orDefault(opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func orDefault[T int | time.Duration](current, fallback T) T {
	if current != 0 {
		return current
	}
	return fallback
}

// Recall loads a stored response. A missing key is reported through found.
func (c *Client) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	if c == nil || c.rdb == nil {
		return "", false, errNotConnected
	}
	payload, err := c.rdb.Get(ctx, replayKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// Remember stores a response unless a concurrent request stored one first.
func (c *Client) Remember(ctx context.Context, scope, key, payload string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return errNotConnected
	}
	return c.rdb.SetNX(ctx, replayKey(scope, key), payload, ttl).Err()
}

// AcquireLease claims name for owner until ttl elapses.
func (c *Client) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, errNotConnected
	}
	return c.rdb.SetNX(ctx, leaseKey(name), owner, ttl).Result()
}

// ReleaseLease drops the lease if owner still holds it and reports whether it did.
func (c *Client) ReleaseLease(ctx context.Context, name, owner string) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, errNotConnected
	}
	n, err := releaseLease.Run(ctx, c.rdb, []string{leaseKey(name)}, owner).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return errNotConnected
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func replayKey(scope, key string) string {
	return joinKey("replay", scope, key)
}

func leaseKey(name string) string {
	return joinKey("lease", name)
}

func joinKey(parts ...string) string {
	key := namespace
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			key += ":" + part
		}
	}
	return key
}
