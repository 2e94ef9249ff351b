package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pingwatch/connectivity-monitor/pkg/logger"
)

// RedisProbe checks every configured Redis shard.
type RedisProbe interface {
	Ping(ctx context.Context) error
	// Check adapts Ping to the dependency check contract.
	Check(ctx context.Context) (bool, error)
	Close() error
}

type redisShard struct {
	addr   string
	client *redis.Client
}

type redisProbe struct {
	shards []redisShard
}

// NewRedisProbe creates one client per address. Clients dial lazily, so an
// unreachable shard is reported by Ping instead of failing construction.
func NewRedisProbe(urls []string, password string, db int) (RedisProbe, error) {
	if len(urls) == 0 {
		return nil, errors.New("redis URLs cannot be empty")
	}

	shards := make([]redisShard, len(urls))

	for i, url := range urls {
		shards[i] = redisShard{
			addr: url,
			client: redis.NewClient(&redis.Options{
				Addr:        url,
				Password:    password,
				DB:          db,
				DialTimeout: 5 * time.Second,
				MaxRetries:  -1,
			}),
		}
	}

	return &redisProbe{shards: shards}, nil
}

func (r *redisProbe) Ping(ctx context.Context) error {
	for i, shard := range r.shards {
		err := shard.client.Ping(ctx).Err()
		logger.LogRedisShardConnection(ctx, i, shard.addr, err)

		if err != nil {
			return fmt.Errorf("redis shard %s: %w", shard.addr, err)
		}
	}
	return nil
}

func (r *redisProbe) Check(ctx context.Context) (bool, error) {
	if err := r.Ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisProbe) Close() error {
	ctx := context.Background()
	var lastErr error

	for i, shard := range r.shards {
		if err := shard.client.Close(); err != nil {
			logger.LogError(ctx, err, "close_redis_shard",
				slog.Int("shard_index", i))
			lastErr = err
		}
	}
	return lastErr
}
