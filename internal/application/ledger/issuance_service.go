package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IssueReceivableRequest represents a request to issue a new receivable
type IssueReceivableRequest struct {
	CustomerID      uuid.UUID       `json:"customer_id" binding:"required"`
	OriginReference string          `json:"origin_reference" binding:"required,max=100"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	DeliveredOn     time.Time       `json:"delivered_on" binding:"required"`
	DueDate         *time.Time      `json:"due_date,omitempty"` // Overrides the customer's payment terms
	Remark          string          `json:"remark,omitempty"`
}

// IssueReceivableResult represents the outcome of an issue request
type IssueReceivableResult struct {
	Receivable *ReceivableResponse `json:"receivable"`
	Created    bool                `json:"created"` // False when an existing receivable was returned
}

// WriteOffRequest represents a request to write off part of a receivable's
// outstanding balance
type WriteOffRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required,max=500"`
}

// IssuanceService issues receivables and manages their lifecycle outside of
// payment allocation
type IssuanceService struct {
	txScope  TransactionScope
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(txScope TransactionScope, eventBus shared.EventPublisher, logger *zap.Logger) *IssuanceService {
	return &IssuanceService{
		txScope:  txScope,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Issue creates a new receivable for a delivered order. The operation is
// idempotent per origin reference: re-issuing for a known origin returns the
// existing receivable without error and without creating a duplicate.
// The due date defaults to the delivery date plus the customer's payment terms.
func (s *IssuanceService) Issue(ctx context.Context, tenantID uuid.UUID, req IssueReceivableRequest) (*IssueReceivableResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if req.DueDate != nil && req.DueDate.Before(req.DeliveredOn) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the delivery date")
	}

	var receivable *ledger.Receivable
	created := false

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// A miss is the normal path for a first-time origin. Repositories
		// report it as shared.ErrNotFound.
		existing, err := repos.ReceivableRepo().FindByOriginReference(ctx, tenantID, req.OriginReference)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			s.logger.Info("receivable already exists for origin, returning existing",
				zap.String("tenant_id", tenantID.String()),
				zap.String("origin_reference", req.OriginReference),
				zap.String("receivable_id", existing.ID.String()),
			)
			receivable = existing
			return nil
		}

		customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.ErrNotFound
		}

		dueDate := req.DeliveredOn.AddDate(0, 0, customer.PaymentTermsDays)
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}

		number, err := repos.ReceivableRepo().GenerateReceivableNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		amount := valueobject.NewMoneyUSD(req.Amount)
		receivable, err = ledger.NewReceivable(tenantID, number, customer.ID, req.OriginReference, amount, req.DeliveredOn, dueDate)
		if err != nil {
			return err
		}
		receivable.Remark = req.Remark

		if err := repos.ReceivableRepo().Save(ctx, receivable); err != nil {
			return err
		}

		if err := customer.AddDebt(req.Amount); err != nil {
			return err
		}
		if err := repos.CustomerRepo().SaveWithLock(ctx, customer); err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.publishEvents(ctx, receivable)
		s.logger.Info("receivable issued",
			zap.String("tenant_id", tenantID.String()),
			zap.String("receivable_id", receivable.ID.String()),
			zap.String("receivable_number", receivable.ReceivableNumber),
			zap.String("origin_reference", req.OriginReference),
			zap.String("amount", req.Amount.String()),
		)
	}

	return &IssueReceivableResult{
		Receivable: toReceivableResponse(receivable),
		Created:    created,
	}, nil
}

// WriteOff waives part of a receivable's outstanding balance and removes the
// waived amount from the customer's debt projection. Writing off the full
// remainder settles the receivable as uncollectible.
func (s *IssuanceService) WriteOff(ctx context.Context, tenantID, receivableID uuid.UUID, req WriteOffRequest) (*ReceivableResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}

	var receivable *ledger.Receivable

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receivable, err = repos.ReceivableRepo().FindByIDForTenant(ctx, tenantID, receivableID)
		if err != nil {
			return err
		}
		if receivable == nil {
			return shared.ErrNotFound
		}

		if err := receivable.WriteOff(req.Amount, req.Reason); err != nil {
			return err
		}
		if err := repos.ReceivableRepo().SaveWithLock(ctx, receivable); err != nil {
			return err
		}

		customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, receivable.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.ErrNotFound
		}
		if err := customer.ReduceDebt(req.Amount); err != nil {
			return err
		}
		return repos.CustomerRepo().SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, receivable)
	s.logger.Info("receivable written off",
		zap.String("tenant_id", tenantID.String()),
		zap.String("receivable_id", receivable.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("reason", req.Reason),
	)

	return toReceivableResponse(receivable), nil
}

// GetByID returns a receivable by ID
func (s *IssuanceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ReceivableResponse, error) {
	var receivable *ledger.Receivable
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receivable, err = repos.ReceivableRepo().FindByIDForTenant(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if receivable == nil {
		return nil, shared.ErrNotFound
	}
	return toReceivableResponse(receivable), nil
}

// List returns receivables for a tenant with filtering
func (s *IssuanceService) List(ctx context.Context, tenantID uuid.UUID, filter ReceivableListFilter) ([]ReceivableResponse, int64, error) {
	domainFilter := ledger.ReceivableFilter{
		Filter:     shared.DefaultFilter(),
		CustomerID: filter.CustomerID,
		DueFrom:    filter.DueFrom,
		DueTo:      filter.DueTo,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := ledger.ReceivableStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown receivable status")
		}
		domainFilter.Status = &status
	}

	var receivables []ledger.Receivable
	var total int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receivables, err = repos.ReceivableRepo().FindAllForTenant(ctx, tenantID, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.ReceivableRepo().CountForTenant(ctx, tenantID, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReceivableResponse, len(receivables))
	for i := range receivables {
		responses[i] = *toReceivableResponse(&receivables[i])
	}
	return responses, total, nil
}

func (s *IssuanceService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	if s.eventBus == nil || agg == nil {
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
