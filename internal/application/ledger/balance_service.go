package ledger

import (
	"context"

	"github.com/erp/receivables/internal/domain/partner"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerBalanceResponse represents a customer's receivable position
type CustomerBalanceResponse struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

// BalanceVerification compares the incremental debt projection with a full
// recompute from receivables
type BalanceVerification struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Projected  decimal.Decimal `json:"projected"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Consistent bool            `json:"consistent"`
}

// BalanceService maintains the customer debt projection. The projection is
// updated incrementally on issue, allocation and write-off; Recompute rebuilds
// it from the receivables table and Verify checks both agree.
type BalanceService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(txScope TransactionScope, logger *zap.Logger) *BalanceService {
	return &BalanceService{
		txScope: txScope,
		logger:  logger,
	}
}

// GetBalance returns the customer's current receivable position
func (s *BalanceService) GetBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalanceResponse, error) {
	var customer *partner.Customer
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		customer, err = repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}

	return &CustomerBalanceResponse{
		CustomerID:    customer.ID,
		Code:          customer.Code,
		Name:          customer.Name,
		TotalDebt:     customer.TotalDebt,
		CreditBalance: customer.CreditBalance,
	}, nil
}

// Verify compares the stored debt projection against a full recompute from
// the receivables table without changing anything
func (s *BalanceService) Verify(ctx context.Context, tenantID, customerID uuid.UUID) (*BalanceVerification, error) {
	var verification *BalanceVerification
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.ErrNotFound
		}

		recomputed, err := repos.ReceivableRepo().SumOutstandingByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}

		verification = &BalanceVerification{
			CustomerID: customerID,
			Projected:  customer.TotalDebt,
			Recomputed: recomputed,
			Consistent: customer.TotalDebt.Equal(recomputed),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !verification.Consistent {
		s.logger.Warn("customer debt projection drifted from receivables",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("projected", verification.Projected.String()),
			zap.String("recomputed", verification.Recomputed.String()),
		)
	}

	return verification, nil
}

// Recompute rebuilds the customer's debt projection from the receivables
// table and stores it. Returns the verification showing the state before
// the repair.
func (s *BalanceService) Recompute(ctx context.Context, tenantID, customerID uuid.UUID) (*BalanceVerification, error) {
	var verification *BalanceVerification
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		customer, err := repos.CustomerRepo().FindByIDForTenant(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return shared.ErrNotFound
		}

		recomputed, err := repos.ReceivableRepo().SumOutstandingByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}

		verification = &BalanceVerification{
			CustomerID: customerID,
			Projected:  customer.TotalDebt,
			Recomputed: recomputed,
			Consistent: customer.TotalDebt.Equal(recomputed),
		}

		if verification.Consistent {
			return nil
		}
		if err := customer.SetTotalDebt(recomputed); err != nil {
			return err
		}
		return repos.CustomerRepo().SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	if !verification.Consistent {
		s.logger.Info("customer debt projection recomputed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("previous", verification.Projected.String()),
			zap.String("recomputed", verification.Recomputed.String()),
		)
	}

	return verification, nil
}
