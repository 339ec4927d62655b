package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and pings the server, retrying a few times
// while the container comes up.
func Connect(ctx context.Context, url string, maxRetries int) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = rdb.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			slog.Info("connected to redis", "addr", opts.Addr)
			return rdb, nil
		}
		slog.Warn("redis ping failed", "attempt", i, "max_retries", maxRetries, "error", lastErr)
		if i < maxRetries {
			select {
			case <-ctx.Done():
				rdb.Close()
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}

	rdb.Close()
	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}
