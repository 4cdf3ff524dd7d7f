// Package cache provides the Redis client and cache-aside helpers.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"linkup/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// errorCountingHook feeds Redis command failures into the error-rate metric.
type errorCountingHook struct{}

func (errorCountingHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCountingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCountingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects the package client to addr, which may be a bare
// host:port or a redis:// URL. An unreachable server leaves the client nil
// and the application runs without caching.
func InitRedis(addr string) {
	opts, err := parseRedisAddr(addr)
	if err != nil {
		log.Printf("Redis disabled: %v", err)
		client = nil
		return
	}

	candidate := redis.NewClient(opts)
	candidate.AddHook(errorCountingHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := candidate.Ping(ctx).Err(); err != nil {
		log.Printf("Redis disabled: %v", err)
		client = nil
		return
	}

	client = candidate
	log.Println("Redis connected")
}

func parseRedisAddr(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}

// SetClient replaces the client instance. Tests use it to point the package at
// a miniredis server.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
