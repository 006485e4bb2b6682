package rollup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockKeyPrefix = "workoutfines::rollup-lock::"

// deletes the key only if it still holds our token
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLock is a single-instance SET NX PX lock. It keeps two replicas from
// running the same weekly rollup at once; the ledger stays idempotent without it.
type RedisLock struct {
	client   redis.UniversalClient
	ttl      time.Duration
	newToken func() string
}

func NewRedisLock(client redis.UniversalClient, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client:   client,
		ttl:      ttl,
		newToken: uuid.NewString,
	}
}

// TryLock returns ok false when another holder has the lock.
func (l *RedisLock) TryLock(ctx context.Context, name string) (token string, ok bool, err error) {
	token = l.newToken()
	ok, err = l.client.SetNX(ctx, lockKeyPrefix+name, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis set nx: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLock) Unlock(ctx context.Context, name, token string) error {
	deleted, err := l.client.Eval(ctx, unlockScript, []string{lockKeyPrefix + name}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis unlock: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("lock %s expired or taken over", name)
	}
	return nil
}
