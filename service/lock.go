package service

import (
	"context"
	"einvoice-gateway/logger"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRefreshLockKey = "gateway:token_refresh_lock"
	DefaultRefreshLockTTL = 30 * time.Second
)

// releaseScript deletes the lock only while it still carries our owner value.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RefreshLocker is a mutual-exclusion marker shared by every process that
// refreshes gateway tokens. Implementations must expire server-side.
type RefreshLocker interface {
	// TryAcquire sets the lock if it is free and reports whether it did.
	TryAcquire(ctx context.Context) (bool, error)
	// Claim sets the lock unconditionally, overwriting another holder.
	Claim(ctx context.Context) error
	// Release clears the lock if this process still owns it.
	Release(ctx context.Context) error
}

// RedisRefreshLock implements RefreshLocker with SET NX PX. The owner value is
// unique per process so one worker never clears another worker's lock.
type RedisRefreshLock struct {
	client ILockClient
	key    string
	ttl    time.Duration
	owner  string
}

func NewRedisRefreshLock(client ILockClient, key string, ttl time.Duration) *RedisRefreshLock {
	if key == "" {
		key = DefaultRefreshLockKey
	}
	if ttl <= 0 {
		ttl = DefaultRefreshLockTTL
	}
	return &RedisRefreshLock{
		client: client,
		key:    key,
		ttl:    ttl,
		owner:  uuid.NewString(),
	}
}

func (l *RedisRefreshLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	return ok, nil
}

func (l *RedisRefreshLock) Claim(ctx context.Context) error {
	if err := l.client.Set(ctx, l.key, l.owner, l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to claim refresh lock: %w", err)
	}
	return nil
}

func (l *RedisRefreshLock) Release(ctx context.Context) error {
	deleted, err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.owner).Int64()
	if err != nil {
		return fmt.Errorf("failed to release refresh lock: %w", err)
	}
	if deleted == 0 {
		logger.Log.WithFields(logrus.Fields{
			"key":   l.key,
			"owner": l.owner,
		}).Debug("Refresh lock already expired or taken over")
	}
	return nil
}
