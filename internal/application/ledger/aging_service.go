package ledger

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SweepResult summarizes one overdue sweep run
type SweepResult struct {
	AsOf           time.Time       `json:"as_of"`
	Scanned        int             `json:"scanned"`
	MarkedOverdue  int             `json:"marked_overdue"`
	Failed         int             `json:"failed"`
	OverdueBalance decimal.Decimal `json:"overdue_balance"`
}

// AgingService marks past-due receivables overdue and produces aging reports.
// The sweep is idempotent: receivables already overdue are untouched, so
// running it twice for the same instant yields the same ledger state.
type AgingService struct {
	txScope  TransactionScope
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewAgingService creates a new AgingService
func NewAgingService(txScope TransactionScope, eventBus shared.EventPublisher, logger *zap.Logger) *AgingService {
	return &AgingService{
		txScope:  txScope,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Sweep marks every open or partial receivable whose due date has passed as
// overdue. Each receivable is saved with optimistic locking; a conflict on one
// receivable (e.g. a concurrent allocation) is counted and skipped rather than
// failing the whole sweep.
func (s *AgingService) Sweep(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*SweepResult, error) {
	result := &SweepResult{
		AsOf:           asOf,
		OverdueBalance: decimal.Zero,
	}
	var marked []*ledger.Receivable

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		dueReceivables, err := repos.ReceivableRepo().FindDueBefore(ctx, tenantID, asOf)
		if err != nil {
			return err
		}
		result.Scanned = len(dueReceivables)

		for i := range dueReceivables {
			receivable := &dueReceivables[i]
			if !receivable.MarkOverdueIfDue(asOf) {
				continue
			}
			if err := repos.ReceivableRepo().SaveWithLock(ctx, receivable); err != nil {
				result.Failed++
				s.logger.Warn("failed to mark receivable overdue",
					zap.String("receivable_id", receivable.ID.String()),
					zap.Error(err),
				)
				continue
			}
			result.MarkedOverdue++
			result.OverdueBalance = result.OverdueBalance.Add(receivable.OutstandingAmount)
			marked = append(marked, receivable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, receivable := range marked {
		s.publishEvents(ctx, receivable)
	}

	s.logger.Info("overdue sweep completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Time("as_of", asOf),
		zap.Int("scanned", result.Scanned),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// Report builds an aging report over all unsettled receivables as of the given time
func (s *AgingService) Report(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*ledger.AgingReport, error) {
	var receivables []ledger.Receivable
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		receivables, err = repos.ReceivableRepo().FindUnsettled(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return ledger.BuildAgingReport(receivables, asOf), nil
}

func (s *AgingService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
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
