package rediswr

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(cfg Config) redis.UniversalClient {
	addrs := strings.Split(cfg.Addrs, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:         addrs,
		Username:      cfg.Username,
		Password:      cfg.Password,
		IsClusterMode: cfg.IsClusterMode,
		DialTimeout:   cfg.DialTimeout,
	})
}

// Connect creates a client and pings it, so misconfiguration fails at startup.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	client := New(cfg)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"addrs": cfg.Addrs}))
	}
	return client, nil
}
