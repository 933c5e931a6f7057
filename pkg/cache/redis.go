// Package cache connects the insight cache backend.
package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OnlyAmFo/LMSWithAIFinal/pkg/config"
	appErrors "github.com/OnlyAmFo/LMSWithAIFinal/pkg/errors"
)

const (
	clientName   = "lms-insights"
	dialTimeout  = 3 * time.Second
	pingDeadline = 5 * time.Second
)

// Options maps the redis settings onto client options. Reads and writes use
// short timeouts because a slow cache only delays a payload the engine can
// recompute.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  dialTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	}
}

// Connect dials redis and verifies it answers PING before returning.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingDeadline)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, appErrors.Unavailable(err, "redis "+opts.Addr+" unreachable")
	}
	return client, nil
}
