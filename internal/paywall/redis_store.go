package paywall

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

const redisKeyPrefix = "unlock:"

// RedisStore keeps unlock state in redis, for deployments where several
// gateway instances must agree on what has been paid for.
type RedisStore struct {
	rdb    *redis.Client
	logger interfaces.Logger
}

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(addr string, db int, logger interfaces.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	logger.Info("redis unlock store ready", interfaces.F("addr", addr))
	return &RedisStore{rdb: rdb, logger: logger}, nil
}

func (r *RedisStore) IsUnlocked(ctx context.Context, reportID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisKeyPrefix+reportID).Result()
	if err != nil {
		return false, fmt.Errorf("querying unlock state: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) Unlock(ctx context.Context, reportID string) error {
	err := r.rdb.Set(ctx, redisKeyPrefix+reportID, time.Now().UTC().Format(time.RFC3339), 0).Err()
	if err != nil {
		return fmt.Errorf("persisting unlock: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.rdb.Close() }

func init() {
	RegisterBackend("redis", func(cfg Config, logger interfaces.Logger) (Store, error) {
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisStore(addr, cfg.RedisDB, logger)
	})
}
