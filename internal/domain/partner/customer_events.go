package partner

import (
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerCreatedEvent is raised when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID       uuid.UUID `json:"customer_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	PaymentTermsDays int       `json:"payment_terms_days"`
}

// EventType returns the event type name
func (e *CustomerCreatedEvent) EventType() string {
	return "CustomerCreated"
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("CustomerCreated", "Customer", c.ID, c.TenantID),
		CustomerID:       c.ID,
		Code:             c.Code,
		Name:             c.Name,
		PaymentTermsDays: c.PaymentTermsDays,
	}
}

// CustomerCreditedEvent is raised when unapplied payment credit is added
type CustomerCreditedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

// EventType returns the event type name
func (e *CustomerCreditedEvent) EventType() string {
	return "CustomerCredited"
}

// NewCustomerCreditedEvent creates a new CustomerCreditedEvent
func NewCustomerCreditedEvent(c *Customer, amount decimal.Decimal) *CustomerCreditedEvent {
	return &CustomerCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerCredited", "Customer", c.ID, c.TenantID),
		CustomerID:      c.ID,
		Amount:          amount,
		CreditBalance:   c.CreditBalance,
	}
}
