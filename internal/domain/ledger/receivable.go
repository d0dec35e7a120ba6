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

// ReceivableStatus represents the status of a receivable
type ReceivableStatus string

const (
	ReceivableStatusOpen       ReceivableStatus = "OPEN"        // Unpaid, outstanding balance equals total
	ReceivableStatusPartial    ReceivableStatus = "PARTIAL"     // Partially paid, 0 < outstanding < total
	ReceivableStatusOverdue    ReceivableStatus = "OVERDUE"     // Past due date with outstanding balance
	ReceivableStatusPaid       ReceivableStatus = "PAID"        // Fully paid, outstanding = 0
	ReceivableStatusWrittenOff ReceivableStatus = "WRITTEN_OFF" // Written off as uncollectible
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusOpen, ReceivableStatusPartial, ReceivableStatusOverdue,
		ReceivableStatusPaid, ReceivableStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the receivable is in a terminal state
func (s ReceivableStatus) IsTerminal() bool {
	return s == ReceivableStatusPaid || s == ReceivableStatusWrittenOff
}

// CanReceiveAllocation returns true if payments can be allocated in this status
func (s ReceivableStatus) CanReceiveAllocation() bool {
	return s == ReceivableStatusOpen || s == ReceivableStatusPartial || s == ReceivableStatusOverdue
}

// CountsTowardDebt returns true if the outstanding balance counts toward customer debt
func (s ReceivableStatus) CountsTowardDebt() bool {
	return s != ReceivableStatusWrittenOff
}

// AllocationRecord represents a payment allocation applied to the receivable
// This is a value object within the Receivable aggregate, stored as JSONB
type AllocationRecord struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
	Remark    string          `json:"remark,omitempty"`
}

// AllocationRecords is a slice of AllocationRecord that implements GORM Scanner/Valuer for JSONB storage
type AllocationRecords []AllocationRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (r AllocationRecords) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (r *AllocationRecords) Scan(value interface{}) error {
	if value == nil {
		*r = AllocationRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AllocationRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*r = AllocationRecords{}
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// NewAllocationRecord creates a new allocation record
func NewAllocationRecord(paymentID uuid.UUID, amount valueobject.Money, remark string) *AllocationRecord {
	return &AllocationRecord{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Amount:    amount.Amount(),
		AppliedAt: time.Now(),
		Remark:    remark,
	}
}

// GetAmountMoney returns the amount as Money value object
func (r *AllocationRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.Amount)
}

// Receivable represents a receivable aggregate root
// It tracks money owed by a customer for goods or services delivered
type Receivable struct {
	shared.TenantAggregateRoot
	ReceivableNumber  string            `json:"receivable_number"`
	CustomerID        uuid.UUID         `json:"customer_id"`
	OriginReference   string            `json:"origin_reference"` // Unique per tenant, e.g. a delivery or invoice number
	TotalAmount       decimal.Decimal   `json:"total_amount"`      // Original amount due
	PaidAmount        decimal.Decimal   `json:"paid_amount"`       // Amount already allocated
	WriteOffAmount    decimal.Decimal   `json:"write_off_amount"`  // Amount waived without payment
	OutstandingAmount decimal.Decimal   `json:"outstanding_amount"`
	Status            ReceivableStatus  `json:"status"`
	InvoiceDate       time.Time         `json:"invoice_date"`
	DueDate           time.Time         `json:"due_date"`
	Allocations       AllocationRecords `json:"allocations"`
	Remark            string            `json:"remark"`
	PaidAt            *time.Time        `json:"paid_at"`
	OverdueAt         *time.Time        `json:"overdue_at"`
	WrittenOffAt      *time.Time        `json:"written_off_at"`
	WriteOffReason    string            `json:"write_off_reason"`
}

// NewReceivable creates a new open receivable
func NewReceivable(
	tenantID uuid.UUID,
	receivableNumber string,
	customerID uuid.UUID,
	originReference string,
	totalAmount valueobject.Money,
	invoiceDate time.Time,
	dueDate time.Time,
) (*Receivable, error) {
	if receivableNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIVABLE_NUMBER", "Receivable number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if originReference == "" {
		return nil, shared.NewDomainError("INVALID_ORIGIN", "Origin reference cannot be empty")
	}
	if totalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	r := &Receivable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceivableNumber:    receivableNumber,
		CustomerID:          customerID,
		OriginReference:     originReference,
		TotalAmount:         totalAmount.Amount(),
		PaidAmount:          decimal.Zero,
		WriteOffAmount:      decimal.Zero,
		OutstandingAmount:   totalAmount.Amount(),
		Status:              ReceivableStatusOpen,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		Allocations:         AllocationRecords{},
	}

	r.AddDomainEvent(NewReceivableIssuedEvent(r))

	return r, nil
}

// ApplyAllocation applies a payment allocation to the receivable
// Returns ErrOverAllocation if the amount exceeds the outstanding balance
func (r *Receivable) ApplyAllocation(amount valueobject.Money, paymentID uuid.UUID, remark string) error {
	if !r.Status.CanReceiveAllocation() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot allocate to receivable in %s status", r.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(r.OutstandingAmount) {
		return shared.NewDomainError("OVER_ALLOCATION", fmt.Sprintf("Allocation %s exceeds outstanding amount %s", amount.StringFixed(2), r.OutstandingAmount.StringFixed(2)))
	}
	if paymentID == uuid.Nil {
		return shared.ErrInvalidPayment
	}

	record := NewAllocationRecord(paymentID, amount, remark)
	r.Allocations = append(r.Allocations, *record)

	r.PaidAmount = r.PaidAmount.Add(amount.Amount())
	r.OutstandingAmount = r.TotalAmount.Sub(r.PaidAmount).Sub(r.WriteOffAmount)

	if r.OutstandingAmount.IsZero() {
		now := time.Now()
		r.Status = ReceivableStatusPaid
		r.PaidAt = &now
		r.AddDomainEvent(NewReceivablePaidEvent(r))
	} else {
		// An overdue receivable stays overdue until settled
		if r.Status != ReceivableStatusOverdue {
			r.Status = ReceivableStatusPartial
		}
		r.AddDomainEvent(NewReceivablePartiallyPaidEvent(r, amount))
	}

	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// MarkOverdueIfDue transitions the receivable to OVERDUE when the due date has
// passed as of the given time. The operation is idempotent.
func (r *Receivable) MarkOverdueIfDue(asOf time.Time) bool {
	if r.Status != ReceivableStatusOpen && r.Status != ReceivableStatusPartial {
		return false
	}
	if !r.DueDate.Before(asOf) {
		return false
	}

	now := time.Now()
	r.Status = ReceivableStatusOverdue
	r.OverdueAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReceivableOverdueEvent(r, asOf))

	return true
}

// WriteOff waives part of the outstanding balance without a payment.
// The waived amount is subject to the same overflow check as allocations:
// paid plus written-off can never exceed the original amount. The receivable
// stays payable after a partial write-off and becomes WRITTEN_OFF once the
// outstanding balance reaches zero.
func (r *Receivable) WriteOff(amount decimal.Decimal, reason string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot write off receivable in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Write-off reason is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(r.OutstandingAmount) {
		return shared.NewDomainError("OVER_ALLOCATION", fmt.Sprintf("Write-off %s exceeds outstanding amount %s", amount.StringFixed(2), r.OutstandingAmount.StringFixed(2)))
	}

	now := time.Now()

	r.WriteOffAmount = r.WriteOffAmount.Add(amount)
	r.OutstandingAmount = r.TotalAmount.Sub(r.PaidAmount).Sub(r.WriteOffAmount)
	r.WriteOffReason = reason

	if r.OutstandingAmount.IsZero() {
		r.Status = ReceivableStatusWrittenOff
		r.WrittenOffAt = &now
	}

	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReceivableWrittenOffEvent(r, amount))

	return nil
}

// GetTotalAmountMoney returns total amount as Money
func (r *Receivable) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (r *Receivable) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.PaidAmount)
}

// GetWriteOffAmountMoney returns written-off amount as Money
func (r *Receivable) GetWriteOffAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.WriteOffAmount)
}

// GetOutstandingAmountMoney returns outstanding amount as Money
func (r *Receivable) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.OutstandingAmount)
}

// IsOpen returns true if receivable is open with no payments
func (r *Receivable) IsOpen() bool {
	return r.Status == ReceivableStatusOpen
}

// IsPartial returns true if receivable is partially paid
func (r *Receivable) IsPartial() bool {
	return r.Status == ReceivableStatusPartial
}

// IsOverdue returns true if receivable is overdue
func (r *Receivable) IsOverdue() bool {
	return r.Status == ReceivableStatusOverdue
}

// IsPaid returns true if receivable is fully paid
func (r *Receivable) IsPaid() bool {
	return r.Status == ReceivableStatusPaid
}

// IsWrittenOff returns true if receivable has been written off
func (r *Receivable) IsWrittenOff() bool {
	return r.Status == ReceivableStatusWrittenOff
}

// IsPastDue returns true if the due date has passed and the balance is unsettled
func (r *Receivable) IsPastDue(asOf time.Time) bool {
	if r.Status.IsTerminal() {
		return false
	}
	return r.DueDate.Before(asOf)
}

// DaysPastDue returns the number of whole days past due as of the given time (0 if not past due)
func (r *Receivable) DaysPastDue(asOf time.Time) int {
	if !r.IsPastDue(asOf) {
		return 0
	}
	return int(asOf.Sub(r.DueDate).Hours() / 24)
}

// AllocationCount returns the number of allocations applied
func (r *Receivable) AllocationCount() int {
	return len(r.Allocations)
}
