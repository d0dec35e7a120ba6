package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/partner"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore keeps aggregates in maps so a whole issue/allocate/write-off
// sequence can run against real bookkeeping instead of canned repository
// answers.
type memoryStore struct {
	mu          sync.Mutex
	receivables map[uuid.UUID]ledger.Receivable
	payments    map[uuid.UUID]ledger.Payment
	customers   map[uuid.UUID]partner.Customer
	seq         int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		receivables: make(map[uuid.UUID]ledger.Receivable),
		payments:    make(map[uuid.UUID]ledger.Payment),
		customers:   make(map[uuid.UUID]partner.Customer),
	}
}

func (s *memoryStore) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

type memReceivableRepo struct{ store *memoryStore }

func (r *memReceivableRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Receivable, error) {
	if rec, ok := r.store.receivables[id]; ok {
		return &rec, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memReceivableRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Receivable, error) {
	if rec, ok := r.store.receivables[id]; ok && rec.TenantID == tenantID {
		return &rec, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memReceivableRepo) FindByOriginReference(_ context.Context, tenantID uuid.UUID, origin string) (*ledger.Receivable, error) {
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.OriginReference == origin {
			found := rec
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memReceivableRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.ReceivableFilter) ([]ledger.Receivable, error) {
	var out []ledger.Receivable
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memReceivableRepo) FindAllocatable(_ context.Context, tenantID, customerID uuid.UUID) ([]ledger.Receivable, error) {
	var out []ledger.Receivable
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.CustomerID == customerID &&
			rec.Status.CanReceiveAllocation() && rec.OutstandingAmount.GreaterThan(decimal.Zero) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		if !out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceDate.Before(out[j].InvoiceDate)
		}
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out, nil
}

func (r *memReceivableRepo) FindDueBefore(_ context.Context, tenantID uuid.UUID, asOf time.Time) ([]ledger.Receivable, error) {
	var out []ledger.Receivable
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.DueDate.Before(asOf) &&
			(rec.Status == ledger.ReceivableStatusOpen || rec.Status == ledger.ReceivableStatusPartial) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memReceivableRepo) FindUnsettled(_ context.Context, tenantID uuid.UUID) ([]ledger.Receivable, error) {
	var out []ledger.Receivable
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.Status.CanReceiveAllocation() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memReceivableRepo) Save(_ context.Context, receivable *ledger.Receivable) error {
	r.store.receivables[receivable.ID] = *receivable
	return nil
}

func (r *memReceivableRepo) SaveWithLock(_ context.Context, receivable *ledger.Receivable) error {
	r.store.receivables[receivable.ID] = *receivable
	return nil
}

func (r *memReceivableRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.ReceivableFilter) (int64, error) {
	var count int64
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (r *memReceivableRepo) SumOutstandingByCustomer(_ context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.CustomerID == customerID && rec.Status.CountsTowardDebt() {
			total = total.Add(rec.OutstandingAmount)
		}
	}
	return total, nil
}

func (r *memReceivableRepo) ExistsByOriginReference(_ context.Context, tenantID uuid.UUID, origin string) (bool, error) {
	for _, rec := range r.store.receivables {
		if rec.TenantID == tenantID && rec.OriginReference == origin {
			return true, nil
		}
	}
	return false, nil
}

func (r *memReceivableRepo) GenerateReceivableNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return fmt.Sprintf("AR-TEST-%05d", r.store.nextSeq()), nil
}

var _ ledger.ReceivableRepository = (*memReceivableRepo)(nil)

type memPaymentRepo struct{ store *memoryStore }

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Payment, error) {
	if p, ok := r.store.payments[id]; ok {
		return &p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	if p, ok := r.store.payments[id]; ok && p.TenantID == tenantID {
		return &p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.store.payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.store.payments {
		if p.TenantID == tenantID && p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.store.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ ledger.PaymentFilter) (int64, error) {
	var count int64
	for _, p := range r.store.payments {
		if p.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (r *memPaymentRepo) GeneratePaymentNumber(_ context.Context, _ uuid.UUID) (string, error) {
	return fmt.Sprintf("PAY-TEST-%05d", r.store.nextSeq()), nil
}

var _ ledger.PaymentRepository = (*memPaymentRepo)(nil)

type memCustomerRepo struct{ store *memoryStore }

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	if c, ok := r.store.customers[id]; ok {
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	if c, ok := r.store.customers[id]; ok && c.TenantID == tenantID {
		return &c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	for _, c := range r.store.customers {
		if c.TenantID == tenantID && c.Code == code {
			found := c
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ partner.CustomerFilter) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, c := range r.store.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCustomerRepo) Save(_ context.Context, customer *partner.Customer) error {
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *memCustomerRepo) SaveWithLock(_ context.Context, customer *partner.Customer) error {
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *memCustomerRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ partner.CustomerFilter) (int64, error) {
	var count int64
	for _, c := range r.store.customers {
		if c.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (r *memCustomerRepo) ExistsByCode(_ context.Context, tenantID uuid.UUID, code string) (bool, error) {
	for _, c := range r.store.customers {
		if c.TenantID == tenantID && c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

var _ partner.CustomerRepository = (*memCustomerRepo)(nil)

type noopLock struct{}

func (noopLock) Acquire(_ context.Context, _, _ uuid.UUID) (func(), error) {
	return func() {}, nil
}

// The debt projection maintained step by step must always match a recompute
// over the stored receivables, across a full issue, allocate and write-off
// sequence.
func TestDebtProjection_MatchesRecomputeAcrossSequence(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	txScope := NewNoOpTransactionScope(
		&memReceivableRepo{store: store},
		&memPaymentRepo{store: store},
		&memCustomerRepo{store: store},
	)

	issuance := NewIssuanceService(txScope, nil, newTestLogger())
	allocation := NewAllocationService(txScope, noopLock{}, nil, newTestLogger())
	balance := NewBalanceService(txScope, newTestLogger())

	tenantID := uuid.New()
	customer, err := partner.NewCustomer(tenantID, "CUST-100", "Sequence Test Co", 30)
	require.NoError(t, err)
	customer.ClearDomainEvents()
	store.customers[customer.ID] = *customer

	verifyConsistent := func(t *testing.T, expected decimal.Decimal) {
		t.Helper()
		v, err := balance.Verify(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.True(t, v.Consistent,
			"projected %s diverged from recomputed %s", v.Projected, v.Recomputed)
		assert.True(t, v.Projected.Equal(expected),
			"projected %s, expected %s", v.Projected, expected)
	}

	// Two deliveries on credit: one already past due, one due soon.
	issued1, err := issuance.Issue(ctx, tenantID, IssueReceivableRequest{
		CustomerID:      customer.ID,
		OriginReference: "DLV-SEQ-1",
		Amount:          decimal.NewFromInt(100),
		DeliveredOn:     time.Now().AddDate(0, 0, -40),
	})
	require.NoError(t, err)
	verifyConsistent(t, decimal.NewFromInt(100))

	issued2, err := issuance.Issue(ctx, tenantID, IssueReceivableRequest{
		CustomerID:      customer.ID,
		OriginReference: "DLV-SEQ-2",
		Amount:          decimal.NewFromInt(200),
		DeliveredOn:     time.Now().AddDate(0, 0, -25),
	})
	require.NoError(t, err)
	verifyConsistent(t, decimal.NewFromInt(300))

	// Replayed issuance must not move the projection.
	replayed, err := issuance.Issue(ctx, tenantID, IssueReceivableRequest{
		CustomerID:      customer.ID,
		OriginReference: "DLV-SEQ-1",
		Amount:          decimal.NewFromInt(100),
		DeliveredOn:     time.Now().AddDate(0, 0, -40),
	})
	require.NoError(t, err)
	assert.False(t, replayed.Created)
	verifyConsistent(t, decimal.NewFromInt(300))

	// 150 settles the older receivable and part of the newer one.
	paid, err := allocation.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromInt(150),
		PaymentMethod: string(ledger.PaymentMethodBankTransfer),
	})
	require.NoError(t, err)
	assert.True(t, paid.TotalAllocated.Equal(decimal.NewFromInt(150)))
	assert.True(t, paid.CreditedAmount.IsZero())
	verifyConsistent(t, decimal.NewFromInt(150))

	stored1 := store.receivables[issued1.Receivable.ID]
	assert.Equal(t, ledger.ReceivableStatusPaid, stored1.Status)

	// Waive 50 of the remaining 150.
	_, err = issuance.WriteOff(ctx, tenantID, issued2.Receivable.ID, WriteOffRequest{
		Amount: decimal.NewFromInt(50),
		Reason: "short shipment",
	})
	require.NoError(t, err)
	verifyConsistent(t, decimal.NewFromInt(100))

	// Overpayment clears the ledger and lands as customer credit.
	overpaid, err := allocation.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: string(ledger.PaymentMethodBankTransfer),
	})
	require.NoError(t, err)
	assert.True(t, overpaid.TotalAllocated.Equal(decimal.NewFromInt(100)))
	assert.True(t, overpaid.CreditedAmount.Equal(decimal.NewFromInt(400)))
	verifyConsistent(t, decimal.Zero)

	storedCustomer := store.customers[customer.ID]
	assert.True(t, storedCustomer.CreditBalance.Equal(decimal.NewFromInt(400)))

	// Every stored receivable still satisfies paid + write-off <= original.
	for _, rec := range store.receivables {
		assert.True(t, rec.PaidAmount.Add(rec.WriteOffAmount).LessThanOrEqual(rec.TotalAmount))
		assert.True(t, rec.OutstandingAmount.Equal(rec.TotalAmount.Sub(rec.PaidAmount).Sub(rec.WriteOffAmount)))
	}
}
