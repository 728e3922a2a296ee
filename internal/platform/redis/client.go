// Package redis opens the connection backing the transient authorization store.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"scp-gateway/internal/platform/config"
)

// Client is the shared go-redis connection plus a readiness probe.
type Client struct {
	*redis.Client
}

// New dials Redis and verifies the connection. It returns (nil, nil) when no
// URL is configured so callers fall back to the in-memory store.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return &Client{Client: rdb}, nil
}

// options layers the tuning knobs over whatever the URL carries. Zero values
// keep the go-redis defaults.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	setInt(&opts.PoolSize, cfg.PoolSize)
	setInt(&opts.MinIdleConns, cfg.MinIdleConns)
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Ready reports whether the server still answers PING. It is registered as a
// readiness check on the router.
func (c *Client) Ready(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
