package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

// redisOptions accepts either a redis:// (or rediss://) URL or a bare
// host:port. An explicit password overrides one embedded in the URL.
func redisOptions(addr string, password string, db int) (*redis.Options, error) {
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		return &redis.Options{Addr: addr, Password: password, DB: db}, nil
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return opts, nil
}

func InitRedis(addr string, password string, db int) (*redis.Client, error) {
	opts, err := redisOptions(addr, password, db)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	_, err = rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
