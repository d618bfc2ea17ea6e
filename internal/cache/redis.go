// Package cache holds the Redis-backed caches: the rendered page store,
// cache-aside helpers for reference data, and the key layout they share.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/observability"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// instrumentation reports command latency and failures to Prometheus.
// redis.Nil is a cache miss, not a failure.
type instrumentation struct{}

func (instrumentation) DialHook(next redis.DialHook) redis.DialHook { return next }

func (instrumentation) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		observe(cmd.Name(), start, err)
		return err
	}
}

func (instrumentation) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		observe("pipeline", start, err)
		return err
	}
}

func observe(op string, start time.Time, err error) {
	observability.RedisCommandLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(op).Inc()
	}
}

// Connect opens a Redis client for addr, either host:port or a redis:// URL.
// It returns nil when addr is empty, malformed or unreachable: the site then
// serves uncached pages and cannot revoke sessions.
func Connect(addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_URL not set, page cache disabled")
		return nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			slog.Warn("invalid REDIS_URL, page cache disabled", "error", err)
			return nil
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	client.AddHook(instrumentation{})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, page cache disabled", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	slog.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return client
}
