package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"mongo-tracing/internal/config"
	"mongo-tracing/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds go-redis options from cfg.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
	if cfg.EnableTLS {
		host := cfg.Addr
		if i := strings.LastIndex(host, ":"); i > 0 {
			host = host[:i]
		}
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return opts
}

// ConnectRedis creates a client and verifies the server answers a ping.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(RedisOptions(cfg))
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Addr, err)
	}
	log.WithFields(map[string]interface{}{
		"addr": cfg.Addr,
		"db":   cfg.DB,
	}).Info("Connected to Redis")
	return client, nil
}
