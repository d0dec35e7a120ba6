package locking

import (
	"context"
	"sync"

	applocking "github.com/erp/receivables/internal/application/ledger"
	"github.com/google/uuid"
)

// LocalCustomerLock serializes allocations per customer within a single
// process using keyed mutexes. Suitable for single-instance deployments;
// use the Redis lock when running more than one instance.
type LocalCustomerLock struct {
	mu    sync.Mutex
	locks map[string]*customerMutex
}

type customerMutex struct {
	mu   sync.Mutex
	refs int
}

// NewLocalCustomerLock creates a new in-process customer lock
func NewLocalCustomerLock() *LocalCustomerLock {
	return &LocalCustomerLock{
		locks: make(map[string]*customerMutex),
	}
}

// Acquire takes the per-customer mutex. The entry is reference counted so
// the map does not grow with every customer ever seen.
func (l *LocalCustomerLock) Acquire(ctx context.Context, tenantID, customerID uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := tenantID.String() + ":" + customerID.String()

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &customerMutex{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
	return release, nil
}

var _ applocking.CustomerLock = (*LocalCustomerLock)(nil)
