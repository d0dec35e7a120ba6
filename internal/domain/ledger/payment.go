package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"          // Cash payment
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER" // Bank transfer
	PaymentMethodCard         PaymentMethod = "CARD"          // Card payment
	PaymentMethodCheck        PaymentMethod = "CHECK"         // Check/Cheque
	PaymentMethodOther        PaymentMethod = "OTHER"         // Other methods
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentAllocation records how part of a payment was applied to a receivable
type PaymentAllocation struct {
	ID               uuid.UUID       `json:"id"`
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	ReceivableNumber string          `json:"receivable_number"` // Denormalized for display
	Amount           decimal.Decimal `json:"amount"`
	AllocatedAt      time.Time       `json:"allocated_at"`
}

// PaymentAllocations is a slice of PaymentAllocation stored as JSONB
type PaymentAllocations []PaymentAllocation

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a PaymentAllocations) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *PaymentAllocations) Scan(value interface{}) error {
	if value == nil {
		*a = PaymentAllocations{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentAllocations: unsupported type")
	}

	if len(bytes) == 0 {
		*a = PaymentAllocations{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Payment represents a payment received from a customer
// Payments are an append-only log: once recorded they are never mutated
// beyond tracking how the amount was distributed across receivables and credit
type Payment struct {
	shared.TenantAggregateRoot
	PaymentNumber    string             `json:"payment_number"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	Amount           decimal.Decimal    `json:"amount"`            // Total payment amount
	AllocatedAmount  decimal.Decimal    `json:"allocated_amount"`  // Amount applied to receivables
	CreditedAmount   decimal.Decimal    `json:"credited_amount"`   // Leftover turned into customer credit
	PaymentMethod    PaymentMethod      `json:"payment_method"`
	PaymentReference string             `json:"payment_reference"` // Bank txn, check number, etc.
	ReceivedAt       time.Time          `json:"received_at"`
	Allocations      PaymentAllocations `json:"allocations"`
	Remark           string             `json:"remark"`
}

// NewPayment creates a new payment record
func NewPayment(
	tenantID uuid.UUID,
	paymentNumber string,
	customerID uuid.UUID,
	amount valueobject.Money,
	paymentMethod PaymentMethod,
	receivedAt time.Time,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidPayment
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		CustomerID:          customerID,
		Amount:              amount.Amount(),
		AllocatedAmount:     decimal.Zero,
		CreditedAmount:      decimal.Zero,
		PaymentMethod:       paymentMethod,
		ReceivedAt:          receivedAt,
		Allocations:         PaymentAllocations{},
	}

	p.AddDomainEvent(NewPaymentReceivedEvent(p))

	return p, nil
}

// UnallocatedAmount returns the portion of the payment not yet applied or credited
func (p *Payment) UnallocatedAmount() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedAmount).Sub(p.CreditedAmount)
}

// RecordAllocation records that part of this payment was applied to a receivable
func (p *Payment) RecordAllocation(receivableID uuid.UUID, receivableNumber string, amount valueobject.Money) error {
	if receivableID == uuid.Nil {
		return shared.NewDomainError("INVALID_RECEIVABLE", "Receivable ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount()) {
		return shared.NewDomainError("OVER_ALLOCATION", fmt.Sprintf("Allocation %s exceeds unallocated payment amount %s", amount.StringFixed(2), p.UnallocatedAmount().StringFixed(2)))
	}

	p.Allocations = append(p.Allocations, PaymentAllocation{
		ID:               uuid.New(),
		ReceivableID:     receivableID,
		ReceivableNumber: receivableNumber,
		Amount:           amount.Amount(),
		AllocatedAt:      time.Now(),
	})
	p.AllocatedAmount = p.AllocatedAmount.Add(amount.Amount())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RecordCredit records the leftover amount converted into customer credit
// Distribution must be complete afterwards: allocated + credited = amount
func (p *Payment) RecordCredit(amount valueobject.Money) error {
	if amount.Amount().IsNegative() {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount()) {
		return shared.NewDomainError("OVER_ALLOCATION", "Credit exceeds unallocated payment amount")
	}

	p.CreditedAmount = p.CreditedAmount.Add(amount.Amount())
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if p.UnallocatedAmount().IsZero() {
		p.AddDomainEvent(NewPaymentAllocatedEvent(p))
	}

	return nil
}

// IsFullyDistributed returns true when the whole payment has been applied or credited
func (p *Payment) IsFullyDistributed() bool {
	return p.UnallocatedAmount().IsZero()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}

// GetAllocatedAmountMoney returns the allocated amount as Money
func (p *Payment) GetAllocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.AllocatedAmount)
}

// GetCreditedAmountMoney returns the credited amount as Money
func (p *Payment) GetCreditedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.CreditedAmount)
}
