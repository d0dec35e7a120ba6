package fulfillment

import (
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeDeliveryCompleted is the event type published when an upstream
// fulfillment system completes a delivery
const EventTypeDeliveryCompleted = "DeliveryCompleted"

// DeliveryCompletedEvent is consumed by the ledger to issue a receivable
// for the delivered goods
type DeliveryCompletedEvent struct {
	shared.BaseDomainEvent
	DeliveryID     uuid.UUID       `json:"delivery_id"`
	DeliveryNumber string          `json:"delivery_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	PayableAmount  decimal.Decimal `json:"payable_amount"`
	DeliveredOn    time.Time       `json:"delivered_on"`
	DueDate        *time.Time      `json:"due_date,omitempty"` // Explicit override of payment terms
}

// EventType returns the event type name
func (e *DeliveryCompletedEvent) EventType() string {
	return EventTypeDeliveryCompleted
}

// NewDeliveryCompletedEvent creates a new DeliveryCompletedEvent
func NewDeliveryCompletedEvent(tenantID, deliveryID, customerID uuid.UUID, deliveryNumber string, payableAmount decimal.Decimal, deliveredOn time.Time, dueDate *time.Time) *DeliveryCompletedEvent {
	return &DeliveryCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryCompleted, "Delivery", deliveryID, tenantID),
		DeliveryID:      deliveryID,
		DeliveryNumber:  deliveryNumber,
		CustomerID:      customerID,
		PayableAmount:   payableAmount,
		DeliveredOn:     deliveredOn,
		DueDate:         dueDate,
	}
}
