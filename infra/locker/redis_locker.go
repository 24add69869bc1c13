package locker

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/radhian/billing-reconciliation/entity"
)

const redisRetryInterval = 100 * time.Millisecond

// RedisLocker shares the snapshot lock across processes.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(redisRetryInterval),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warnf("[Lock] Could not obtain %s: %v", key, err)
		return nil, entity.ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}
