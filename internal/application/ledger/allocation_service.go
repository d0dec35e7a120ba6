package ledger

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceivePaymentRequest represents an incoming customer payment
type ReceivePaymentRequest struct {
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod    string          `json:"payment_method" binding:"required"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	ReceivedAt       *time.Time      `json:"received_at,omitempty"`
	Remark           string          `json:"remark,omitempty"`
}

// ReceivePaymentResult represents the outcome of receiving and allocating a payment
type ReceivePaymentResult struct {
	Payment            *PaymentResponse     `json:"payment"`
	UpdatedReceivables []ReceivableResponse `json:"updated_receivables"`
	TotalAllocated     decimal.Decimal      `json:"total_allocated"`
	CreditedAmount     decimal.Decimal      `json:"credited_amount"`
}

// AllocationService receives customer payments and distributes them across
// outstanding receivables using the waterfall strategy. Allocations for the
// same customer are serialized through the customer lock; each allocation runs
// in a single transaction so the payment, every touched receivable and the
// customer projection commit together.
type AllocationService struct {
	txScope   TransactionScope
	waterfall *ledger.WaterfallStrategy
	lock      CustomerLock
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	txScope TransactionScope,
	lock CustomerLock,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AllocationService {
	return &AllocationService{
		txScope:   txScope,
		waterfall: ledger.NewWaterfallStrategy(),
		lock:      lock,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// ReceivePayment records a payment and allocates it across the customer's
// outstanding receivables, oldest due date first. Whatever the waterfall does
// not consume becomes customer credit.
func (s *AllocationService) ReceivePayment(ctx context.Context, tenantID uuid.UUID, req ReceivePaymentRequest) (*ReceivePaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidPayment
	}
	method := ledger.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	release, err := s.lock.Acquire(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var payment *ledger.Payment
	var updated []*ledger.Receivable
	var creditedAmount decimal.Decimal
	var publish []shared.AggregateRoot

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.ErrNotFound
		}

		number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		receivedAt := time.Now()
		if req.ReceivedAt != nil {
			receivedAt = *req.ReceivedAt
		}

		payment, err = ledger.NewPayment(tenantID, number, customer.ID,
			valueobject.NewMoneyUSD(req.Amount), method, receivedAt)
		if err != nil {
			return err
		}
		payment.PaymentReference = req.PaymentReference
		payment.Remark = req.Remark

		receivables, err := repos.ReceivableRepo().FindAllocatable(ctx, tenantID, customer.ID)
		if err != nil {
			return err
		}

		plan, err := s.waterfall.Plan(payment.GetAmountMoney(), toAllocationTargets(receivables))
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*ledger.Receivable, len(receivables))
		for i := range receivables {
			byID[receivables[i].ID] = &receivables[i]
		}

		updated = updated[:0]
		for _, step := range plan.Steps {
			receivable, ok := byID[step.TargetID]
			if !ok {
				return shared.NewDomainError("NOT_FOUND", "Planned receivable not found")
			}

			stepAmount := valueobject.NewMoneyUSD(step.Amount)
			if err := receivable.ApplyAllocation(stepAmount, payment.ID, req.Remark); err != nil {
				return err
			}
			if err := payment.RecordAllocation(receivable.ID, receivable.ReceivableNumber, stepAmount); err != nil {
				return err
			}
			if err := repos.ReceivableRepo().SaveWithLock(ctx, receivable); err != nil {
				return err
			}
			updated = append(updated, receivable)
		}

		creditedAmount = plan.RemainingAmount
		if err := payment.RecordCredit(valueobject.NewMoneyUSD(creditedAmount)); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		if err := customer.ApplyPaymentOutcome(plan.TotalAllocated, creditedAmount); err != nil {
			return err
		}
		if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
			return err
		}

		publish = publish[:0]
		publish = append(publish, payment, customer)
		for _, r := range updated {
			publish = append(publish, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, agg := range publish {
		s.publishEvents(ctx, agg)
	}

	s.logger.Info("payment received and allocated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("allocated", payment.AllocatedAmount.String()),
		zap.String("credited", creditedAmount.String()),
		zap.Int("receivables_touched", len(updated)),
	)

	updatedResponses := make([]ReceivableResponse, len(updated))
	for i, r := range updated {
		updatedResponses[i] = *toReceivableResponse(r)
	}

	return &ReceivePaymentResult{
		Payment:            toPaymentResponse(payment),
		UpdatedReceivables: updatedResponses,
		TotalAllocated:     payment.AllocatedAmount,
		CreditedAmount:     creditedAmount,
	}, nil
}

// GetPaymentByID returns a payment by ID
func (s *AllocationService) GetPaymentByID(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	var payment *ledger.Payment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.ErrNotFound
	}
	return toPaymentResponse(payment), nil
}

// ListPayments returns payments for a tenant with filtering
func (s *AllocationService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := ledger.PaymentFilter{
		Filter:       shared.DefaultFilter(),
		CustomerID:   filter.CustomerID,
		ReceivedFrom: filter.ReceivedFrom,
		ReceivedTo:   filter.ReceivedTo,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	var payments []ledger.Payment
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payments, err = repos.PaymentRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.PaymentRepo().CountForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, total, nil
}

func toAllocationTargets(receivables []ledger.Receivable) []ledger.AllocationTarget {
	targets := make([]ledger.AllocationTarget, 0, len(receivables))
	for _, r := range receivables {
		if r.Status.CanReceiveAllocation() && r.OutstandingAmount.GreaterThan(decimal.Zero) {
			targets = append(targets, ledger.AllocationTarget{
				ID:                r.ID,
				Number:            r.ReceivableNumber,
				OutstandingAmount: r.OutstandingAmount,
				DueDate:           r.DueDate,
				InvoiceDate:       r.InvoiceDate,
			})
		}
	}
	return targets
}

func (s *AllocationService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventBus == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	agg.ClearDomainEvents()
}
