package ledger

import (
	"context"

	"github.com/google/uuid"
)

// CustomerLock serializes payment allocation per customer. Two concurrent
// allocations for the same customer must not interleave; allocations for
// different customers may run in parallel.
type CustomerLock interface {
	// Acquire blocks until the lock for the given customer is held or the
	// context is cancelled. The returned release function must be called
	// exactly once.
	Acquire(ctx context.Context, tenantID, customerID uuid.UUID) (release func(), err error)
}
