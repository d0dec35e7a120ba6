package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingCustomerLock tracks acquire and release calls for assertions
type recordingCustomerLock struct {
	acquired int
	released int
}

func (l *recordingCustomerLock) Acquire(_ context.Context, _, _ uuid.UUID) (func(), error) {
	l.acquired++
	return func() { l.released++ }, nil
}

var _ CustomerLock = (*recordingCustomerLock)(nil)

func TestAllocationService_ReceivePayment_WaterfallOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	lock := &recordingCustomerLock{}
	service := NewAllocationService(f.txScope, lock, nil, newTestLogger())

	tenantID := uuid.New()
	customer := newTestCustomer(t, tenantID, 30)
	require.NoError(t, customer.AddDebt(decimal.NewFromFloat(1000.00)))

	older := newTestLedgerReceivable(t, tenantID, customer.ID, "RCV-001", "DLV-001",
		decimal.NewFromFloat(500.00),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	newer := newTestLedgerReceivable(t, tenantID, customer.ID, "RCV-002", "DLV-002",
		decimal.NewFromFloat(500.00),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	f.customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	f.paymentRepo.On("GeneratePaymentNumber", ctx, tenantID).Return("PAY-20260831-001", nil)
	f.receivableRepo.On("FindAllocatable", ctx, tenantID, customer.ID).
		Return([]ledger.Receivable{*newer, *older}, nil)
	f.receivableRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*ledger.Receivable")).Return(nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	f.customerRepo.On("SaveWithLock", ctx, customer).Return(nil)

	result, err := service.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromFloat(800.00),
		PaymentMethod: "BANK_TRANSFER",
	})

	require.NoError(t, err)
	assert.True(t, result.TotalAllocated.Equal(decimal.NewFromFloat(800.00)))
	assert.True(t, result.CreditedAmount.IsZero())
	require.Len(t, result.UpdatedReceivables, 2)

	// The receivable with the earlier due date is settled first
	assert.Equal(t, "RCV-001", result.UpdatedReceivables[0].ReceivableNumber)
	assert.Equal(t, string(ledger.ReceivableStatusPaid), result.UpdatedReceivables[0].Status)
	assert.Equal(t, "RCV-002", result.UpdatedReceivables[1].ReceivableNumber)
	assert.Equal(t, string(ledger.ReceivableStatusPartial), result.UpdatedReceivables[1].Status)
	assert.True(t, result.UpdatedReceivables[1].OutstandingAmount.Equal(decimal.NewFromFloat(200.00)))

	require.Len(t, result.Payment.Allocations, 2)
	assert.Equal(t, "RCV-001", result.Payment.Allocations[0].ReceivableNumber)
	assert.True(t, result.Payment.Allocations[0].Amount.Equal(decimal.NewFromFloat(500.00)))
	assert.True(t, result.Payment.Allocations[1].Amount.Equal(decimal.NewFromFloat(300.00)))

	assert.True(t, customer.TotalDebt.Equal(decimal.NewFromFloat(200.00)))
	assert.True(t, customer.CreditBalance.IsZero())
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	f.receivableRepo.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
	f.customerRepo.AssertExpectations(t)
}

func TestAllocationService_ReceivePayment_LeftoverBecomesCredit(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	lock := &recordingCustomerLock{}
	service := NewAllocationService(f.txScope, lock, nil, newTestLogger())

	tenantID := uuid.New()
	customer := newTestCustomer(t, tenantID, 30)
	require.NoError(t, customer.AddDebt(decimal.NewFromFloat(500.00)))

	receivable := newTestLedgerReceivable(t, tenantID, customer.ID, "RCV-001", "DLV-001",
		decimal.NewFromFloat(500.00),
		time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	f.customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	f.paymentRepo.On("GeneratePaymentNumber", ctx, tenantID).Return("PAY-20260831-002", nil)
	f.receivableRepo.On("FindAllocatable", ctx, tenantID, customer.ID).
		Return([]ledger.Receivable{*receivable}, nil)
	f.receivableRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*ledger.Receivable")).Return(nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	f.customerRepo.On("SaveWithLock", ctx, customer).Return(nil)

	result, err := service.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromFloat(700.00),
		PaymentMethod: "CASH",
	})

	require.NoError(t, err)
	assert.True(t, result.TotalAllocated.Equal(decimal.NewFromFloat(500.00)))
	assert.True(t, result.CreditedAmount.Equal(decimal.NewFromFloat(200.00)))
	// Allocated plus credited always accounts for the full payment amount
	assert.True(t, result.Payment.AllocatedAmount.Add(result.Payment.CreditedAmount).
		Equal(result.Payment.Amount))

	assert.True(t, customer.TotalDebt.IsZero())
	assert.True(t, customer.CreditBalance.Equal(decimal.NewFromFloat(200.00)))
}

func TestAllocationService_ReceivePayment_NoOutstandingAllCredit(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	lock := &recordingCustomerLock{}
	service := NewAllocationService(f.txScope, lock, nil, newTestLogger())

	tenantID := uuid.New()
	customer := newTestCustomer(t, tenantID, 30)

	f.customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	f.paymentRepo.On("GeneratePaymentNumber", ctx, tenantID).Return("PAY-20260831-003", nil)
	f.receivableRepo.On("FindAllocatable", ctx, tenantID, customer.ID).
		Return([]ledger.Receivable{}, nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	f.customerRepo.On("SaveWithLock", ctx, customer).Return(nil)

	result, err := service.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromFloat(300.00),
		PaymentMethod: "CARD",
	})

	require.NoError(t, err)
	assert.True(t, result.TotalAllocated.IsZero())
	assert.True(t, result.CreditedAmount.Equal(decimal.NewFromFloat(300.00)))
	assert.Empty(t, result.UpdatedReceivables)
	assert.True(t, customer.CreditBalance.Equal(decimal.NewFromFloat(300.00)))
	f.receivableRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestAllocationService_ReceivePayment_NonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	lock := &recordingCustomerLock{}
	service := NewAllocationService(f.txScope, lock, nil, newTestLogger())

	_, err := service.ReceivePayment(ctx, uuid.New(), ReceivePaymentRequest{
		CustomerID:    uuid.New(),
		Amount:        decimal.Zero,
		PaymentMethod: "CASH",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidPayment)
	// Rejected before the customer lock is even taken
	assert.Equal(t, 0, lock.acquired)
}

func TestAllocationService_ReceivePayment_InvalidMethod(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	service := NewAllocationService(f.txScope, &recordingCustomerLock{}, nil, newTestLogger())

	_, err := service.ReceivePayment(ctx, uuid.New(), ReceivePaymentRequest{
		CustomerID:    uuid.New(),
		Amount:        decimal.NewFromFloat(100.00),
		PaymentMethod: "BARTER",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PAYMENT_METHOD", domainErr.Code)
}

func TestAllocationService_ReceivePayment_CustomerNotFound(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	lock := &recordingCustomerLock{}
	service := NewAllocationService(f.txScope, lock, nil, newTestLogger())

	tenantID := uuid.New()
	customerID := uuid.New()
	f.customerRepo.On("FindByIDForTenant", ctx, tenantID, customerID).Return(nil, shared.ErrNotFound)

	_, err := service.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customerID,
		Amount:        decimal.NewFromFloat(100.00),
		PaymentMethod: "CASH",
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	// The lock is released even when the transaction fails
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

func TestAllocationService_ReceivePayment_FractionalAmountsSumExactly(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	service := NewAllocationService(f.txScope, &recordingCustomerLock{}, nil, newTestLogger())

	tenantID := uuid.New()
	customer := newTestCustomer(t, tenantID, 30)
	require.NoError(t, customer.AddDebt(decimal.NewFromFloat(0.03)))

	invoiceDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	first := newTestLedgerReceivable(t, tenantID, customer.ID, "RCV-001", "DLV-001",
		decimal.NewFromFloat(0.01), invoiceDate, invoiceDate.AddDate(0, 0, 10))
	second := newTestLedgerReceivable(t, tenantID, customer.ID, "RCV-002", "DLV-002",
		decimal.NewFromFloat(0.02), invoiceDate, invoiceDate.AddDate(0, 0, 20))

	f.customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	f.paymentRepo.On("GeneratePaymentNumber", ctx, tenantID).Return("PAY-20260831-004", nil)
	f.receivableRepo.On("FindAllocatable", ctx, tenantID, customer.ID).
		Return([]ledger.Receivable{*first, *second}, nil)
	f.receivableRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*ledger.Receivable")).Return(nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*ledger.Payment")).Return(nil)
	f.customerRepo.On("SaveWithLock", ctx, customer).Return(nil)

	result, err := service.ReceivePayment(ctx, tenantID, ReceivePaymentRequest{
		CustomerID:    customer.ID,
		Amount:        decimal.NewFromFloat(0.03),
		PaymentMethod: "CASH",
	})

	require.NoError(t, err)
	assert.True(t, result.TotalAllocated.Equal(decimal.NewFromFloat(0.03)))
	assert.True(t, result.CreditedAmount.IsZero())
	for _, r := range result.UpdatedReceivables {
		assert.Equal(t, string(ledger.ReceivableStatusPaid), r.Status)
	}
	assert.True(t, customer.TotalDebt.IsZero())
}

func TestAllocationService_GetPaymentByID_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	service := NewAllocationService(f.txScope, &recordingCustomerLock{}, nil, newTestLogger())

	tenantID := uuid.New()
	id := uuid.New()
	f.paymentRepo.On("FindByIDForTenant", ctx, tenantID, id).Return(nil, shared.ErrNotFound)

	_, err := service.GetPaymentByID(ctx, tenantID, id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
