package ledger

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableFilter defines filtering options for receivable queries
type ReceivableFilter struct {
	shared.Filter
	CustomerID *uuid.UUID        // Filter by customer
	Status     *ReceivableStatus // Filter by status
	DueFrom    *time.Time        // Filter by due date range start
	DueTo      *time.Time        // Filter by due date range end
	MinAmount  *decimal.Decimal  // Filter by minimum outstanding amount
	MaxAmount  *decimal.Decimal  // Filter by maximum outstanding amount
}

// ReceivableRepository defines the interface for receivable persistence.
// Find methods return shared.ErrNotFound when no record matches.
type ReceivableRepository interface {
	// FindByID finds a receivable by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Receivable, error)

	// FindByIDForTenant finds a receivable by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receivable, error)

	// FindByOriginReference finds a receivable by its origin reference for a tenant
	FindByOriginReference(ctx context.Context, tenantID uuid.UUID, originReference string) (*Receivable, error)

	// FindAllForTenant finds all receivables for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) ([]Receivable, error)

	// FindAllocatable finds receivables with an outstanding balance for a customer,
	// ordered by due date, invoice date, then ID
	FindAllocatable(ctx context.Context, tenantID, customerID uuid.UUID) ([]Receivable, error)

	// FindDueBefore finds open and partial receivables whose due date is before the given time
	FindDueBefore(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Receivable, error)

	// FindUnsettled finds all receivables that still carry an outstanding balance for a tenant
	FindUnsettled(ctx context.Context, tenantID uuid.UUID) ([]Receivable, error)

	// Save creates or updates a receivable
	Save(ctx context.Context, receivable *Receivable) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, receivable *Receivable) error

	// CountForTenant counts receivables for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) (int64, error)

	// SumOutstandingByCustomer calculates total outstanding for a customer
	// excluding written-off receivables
	SumOutstandingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)

	// ExistsByOriginReference checks if a receivable exists for the given origin reference
	ExistsByOriginReference(ctx context.Context, tenantID uuid.UUID, originReference string) (bool, error)

	// GenerateReceivableNumber generates a unique receivable number for a tenant
	GenerateReceivableNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID   *uuid.UUID // Filter by customer
	ReceivedFrom *time.Time // Filter by received date range start
	ReceivedTo   *time.Time // Filter by received date range end
}

// PaymentRepository defines the interface for payment persistence.
// Payments are append-only; there is no delete.
// Find methods return shared.ErrNotFound when no record matches.
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant finds all payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindByCustomer finds payments for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// CountForTenant counts payments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// GeneratePaymentNumber generates a unique payment number for a tenant
	GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
