package locking

import (
	"context"
	"fmt"
	"time"

	applocking "github.com/erp/receivables/internal/application/ledger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCustomerLock serializes allocations per customer across processes
// using Redis SETNX with a TTL. The TTL bounds how long a crashed holder
// can block other instances.
type RedisCustomerLock struct {
	client     *redis.Client
	keyPrefix  string
	ttl        time.Duration
	retryDelay time.Duration
}

// NewRedisCustomerLock creates a Redis-backed customer lock
func NewRedisCustomerLock(client *redis.Client, ttl, retryDelay time.Duration) *RedisCustomerLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}
	return &RedisCustomerLock{
		client:     client,
		keyPrefix:  "ledger:customer_lock:",
		ttl:        ttl,
		retryDelay: retryDelay,
	}
}

// Acquire polls SETNX until the lock is held or the context is cancelled.
// The lock value is unique per acquisition so a release cannot delete a
// lock taken over by another holder after TTL expiry.
func (l *RedisCustomerLock) Acquire(ctx context.Context, tenantID, customerID uuid.UUID) (func(), error) {
	key := l.keyPrefix + tenantID.String() + ":" + customerID.String()
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire customer lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	release := func() {
		// Delete only if we still own the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

// releaseScript deletes the lock key only when it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var _ applocking.CustomerLock = (*RedisCustomerLock)(nil)
