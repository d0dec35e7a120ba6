package ledger

import (
	"context"
	"fmt"

	"github.com/erp/receivables/internal/domain/fulfillment"
	"github.com/erp/receivables/internal/domain/shared"
	"go.uber.org/zap"
)

// DeliveryCompletedHandler issues a receivable when a delivery completes.
// Issue is idempotent on the origin reference, so redelivered events are safe.
type DeliveryCompletedHandler struct {
	issuanceService *IssuanceService
	logger          *zap.Logger
}

// NewDeliveryCompletedHandler creates a new DeliveryCompletedHandler
func NewDeliveryCompletedHandler(issuanceService *IssuanceService, logger *zap.Logger) *DeliveryCompletedHandler {
	return &DeliveryCompletedHandler{
		issuanceService: issuanceService,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *DeliveryCompletedHandler) EventTypes() []string {
	return []string{fulfillment.EventTypeDeliveryCompleted}
}

// Handle processes a DeliveryCompletedEvent
func (h *DeliveryCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*fulfillment.DeliveryCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	h.logger.Info("handling delivery completed event",
		zap.String("tenant_id", completed.TenantID().String()),
		zap.String("delivery_number", completed.DeliveryNumber),
		zap.String("customer_id", completed.CustomerID.String()),
		zap.String("payable_amount", completed.PayableAmount.String()))

	result, err := h.issuanceService.Issue(ctx, completed.TenantID(), IssueReceivableRequest{
		CustomerID:      completed.CustomerID,
		OriginReference: completed.DeliveryNumber,
		Amount:          completed.PayableAmount,
		DeliveredOn:     completed.DeliveredOn,
		DueDate:         completed.DueDate,
		Remark:          fmt.Sprintf("Issued for delivery %s", completed.DeliveryNumber),
	})
	if err != nil {
		h.logger.Error("failed to issue receivable for delivery",
			zap.String("delivery_number", completed.DeliveryNumber),
			zap.Error(err))
		return err
	}

	if !result.Created {
		h.logger.Info("receivable already issued for delivery",
			zap.String("delivery_number", completed.DeliveryNumber),
			zap.String("receivable_number", result.Receivable.ReceivableNumber))
		return nil
	}

	h.logger.Info("receivable issued for delivery",
		zap.String("delivery_number", completed.DeliveryNumber),
		zap.String("receivable_number", result.Receivable.ReceivableNumber))
	return nil
}
