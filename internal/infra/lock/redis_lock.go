package lock

import (
	"context"
	"time"

	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// Deletes the lock only when the stored holder token matches, so a caller
// whose lock already expired cannot release someone else's re-acquisition.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockManager is an advisory, non-reentrant TTL lock over Redis.
// Acquire is a single SET NX PX round trip; an expired key is simply absent,
// which makes set-if-absent-or-expired one atomic operation.
type RedisLockManager struct {
	client *redis.Client
}

func NewRedisLockManager(client *redis.Client) shared.LockManager {
	return &RedisLockManager{client: client}
}

func (m *RedisLockManager) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, errs.Wrap(err, "failed to acquire lock "+key)
	}
	return ok, nil
}

func (m *RedisLockManager) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, m.client, []string{keyPrefix + key}, token).Err(); err != nil {
		return errs.Wrap(err, "failed to release lock "+key)
	}
	return nil
}
