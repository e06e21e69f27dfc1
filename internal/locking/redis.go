package locking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

// Locker guards a booking slot against concurrent requests. Acquire
// returns ok=false when another request already holds the key. The
// returned release func is safe to call even after the TTL expired.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX + TTL. The lock narrows but
// does not close the double-booking window; it is an opt-in mitigation,
// not a serialization guarantee.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisLocker wraps an existing redis client.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisLocker {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Acquire takes the lock for key, returning a release func on success.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	lockKey := "booking-lock:" + key

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		if _, err := releaseScript.Run(context.Background(), l.client, []string{lockKey}, token).Result(); err != nil {
			l.logger.Warn("failed to release booking lock", "key", lockKey, "error", err)
		}
	}
	return release, true, nil
}
