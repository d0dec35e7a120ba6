package ledger

import (
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableIssuedEvent is raised when a new receivable is issued
type ReceivableIssuedEvent struct {
	shared.BaseDomainEvent
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	ReceivableNumber string          `json:"receivable_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	OriginReference  string          `json:"origin_reference"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	DueDate          time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *ReceivableIssuedEvent) EventType() string {
	return "ReceivableIssued"
}

// NewReceivableIssuedEvent creates a new ReceivableIssuedEvent
func NewReceivableIssuedEvent(r *Receivable) *ReceivableIssuedEvent {
	return &ReceivableIssuedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ReceivableIssued", "Receivable", r.ID, r.TenantID),
		ReceivableID:     r.ID,
		ReceivableNumber: r.ReceivableNumber,
		CustomerID:       r.CustomerID,
		OriginReference:  r.OriginReference,
		TotalAmount:      r.TotalAmount,
		InvoiceDate:      r.InvoiceDate,
		DueDate:          r.DueDate,
	}
}

// ReceivablePaidEvent is raised when a receivable is fully settled
type ReceivablePaidEvent struct {
	shared.BaseDomainEvent
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	ReceivableNumber string          `json:"receivable_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaidAt           time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *ReceivablePaidEvent) EventType() string {
	return "ReceivablePaid"
}

// NewReceivablePaidEvent creates a new ReceivablePaidEvent
func NewReceivablePaidEvent(r *Receivable) *ReceivablePaidEvent {
	paidAt := time.Now()
	if r.PaidAt != nil {
		paidAt = *r.PaidAt
	}
	return &ReceivablePaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ReceivablePaid", "Receivable", r.ID, r.TenantID),
		ReceivableID:     r.ID,
		ReceivableNumber: r.ReceivableNumber,
		CustomerID:       r.CustomerID,
		TotalAmount:      r.TotalAmount,
		PaidAt:           paidAt,
	}
}

// ReceivablePartiallyPaidEvent is raised when a partial allocation is applied
type ReceivablePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	ReceivableID      uuid.UUID       `json:"receivable_id"`
	ReceivableNumber  string          `json:"receivable_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	PaymentAmount     decimal.Decimal `json:"payment_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// EventType returns the event type name
func (e *ReceivablePartiallyPaidEvent) EventType() string {
	return "ReceivablePartiallyPaid"
}

// NewReceivablePartiallyPaidEvent creates a new ReceivablePartiallyPaidEvent
func NewReceivablePartiallyPaidEvent(r *Receivable, paymentAmount valueobject.Money) *ReceivablePartiallyPaidEvent {
	return &ReceivablePartiallyPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("ReceivablePartiallyPaid", "Receivable", r.ID, r.TenantID),
		ReceivableID:      r.ID,
		ReceivableNumber:  r.ReceivableNumber,
		CustomerID:        r.CustomerID,
		PaymentAmount:     paymentAmount.Amount(),
		PaidAmount:        r.PaidAmount,
		OutstandingAmount: r.OutstandingAmount,
	}
}

// ReceivableOverdueEvent is raised when a receivable transitions to overdue
type ReceivableOverdueEvent struct {
	shared.BaseDomainEvent
	ReceivableID      uuid.UUID       `json:"receivable_id"`
	ReceivableNumber  string          `json:"receivable_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	DueDate           time.Time       `json:"due_date"`
	AsOf              time.Time       `json:"as_of"`
}

// EventType returns the event type name
func (e *ReceivableOverdueEvent) EventType() string {
	return "ReceivableOverdue"
}

// NewReceivableOverdueEvent creates a new ReceivableOverdueEvent
func NewReceivableOverdueEvent(r *Receivable, asOf time.Time) *ReceivableOverdueEvent {
	return &ReceivableOverdueEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("ReceivableOverdue", "Receivable", r.ID, r.TenantID),
		ReceivableID:      r.ID,
		ReceivableNumber:  r.ReceivableNumber,
		CustomerID:        r.CustomerID,
		OutstandingAmount: r.OutstandingAmount,
		DueDate:           r.DueDate,
		AsOf:              asOf,
	}
}

// ReceivableWrittenOffEvent is raised when a receivable is written off
type ReceivableWrittenOffEvent struct {
	shared.BaseDomainEvent
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	ReceivableNumber string          `json:"receivable_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	WaivedAmount     decimal.Decimal `json:"waived_amount"`
	Reason           string          `json:"reason"`
}

// EventType returns the event type name
func (e *ReceivableWrittenOffEvent) EventType() string {
	return "ReceivableWrittenOff"
}

// NewReceivableWrittenOffEvent creates a new ReceivableWrittenOffEvent
func NewReceivableWrittenOffEvent(r *Receivable, waived decimal.Decimal) *ReceivableWrittenOffEvent {
	return &ReceivableWrittenOffEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ReceivableWrittenOff", "Receivable", r.ID, r.TenantID),
		ReceivableID:     r.ID,
		ReceivableNumber: r.ReceivableNumber,
		CustomerID:       r.CustomerID,
		WaivedAmount:     waived,
		Reason:           r.WriteOffReason,
	}
}

// PaymentReceivedEvent is raised when a payment is recorded
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	ReceivedAt    time.Time       `json:"received_at"`
}

// EventType returns the event type name
func (e *PaymentReceivedEvent) EventType() string {
	return "PaymentReceived"
}

// NewPaymentReceivedEvent creates a new PaymentReceivedEvent
func NewPaymentReceivedEvent(p *Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReceived", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		ReceivedAt:      p.ReceivedAt,
	}
}

// PaymentAllocatedEvent is raised when a payment has been fully distributed
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID       `json:"payment_id"`
	PaymentNumber   string          `json:"payment_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	CreditedAmount  decimal.Decimal `json:"credited_amount"`
	AllocationCount int             `json:"allocation_count"`
}

// EventType returns the event type name
func (e *PaymentAllocatedEvent) EventType() string {
	return "PaymentAllocated"
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(p *Payment) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentAllocated", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		AllocatedAmount: p.AllocatedAmount,
		CreditedAmount:  p.CreditedAmount,
		AllocationCount: len(p.Allocations),
	}
}
