package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationTarget represents a receivable eligible for allocation
type AllocationTarget struct {
	ID                uuid.UUID       // ID of the receivable
	Number            string          // Receivable number for display purposes
	OutstandingAmount decimal.Decimal // Amount still outstanding
	DueDate           time.Time       // Primary waterfall ordering key
	InvoiceDate       time.Time       // Secondary ordering key
}

// AllocationStep represents a single planned allocation
type AllocationStep struct {
	TargetID     uuid.UUID       // ID of the receivable
	TargetNumber string          // Number of the receivable
	Amount       decimal.Decimal // Amount to allocate
}

// AllocationPlan represents the complete result of a waterfall run
type AllocationPlan struct {
	Steps                []AllocationStep // Allocations to make, in waterfall order
	TotalAllocated       decimal.Decimal  // Total amount allocated
	RemainingAmount      decimal.Decimal  // Leftover to be credited to the customer
	FullyAllocated       bool             // True if the whole amount was consumed
	TargetsFullyPaid     []uuid.UUID      // Targets that will be fully settled
	TargetsPartiallyPaid []uuid.UUID      // Targets that will be partially settled
}

// WaterfallStrategy plans the distribution of a payment across outstanding
// receivables. Ordering is deterministic: due date first, then invoice date,
// then receivable ID as the final tiebreak. The plan never exceeds any
// target's outstanding amount; whatever is left over stays in the plan as
// RemainingAmount for the caller to credit.
type WaterfallStrategy struct{}

// NewWaterfallStrategy creates a new waterfall allocation strategy
func NewWaterfallStrategy() *WaterfallStrategy {
	return &WaterfallStrategy{}
}

// Plan calculates how to allocate the given amount across targets
func (s *WaterfallStrategy) Plan(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if len(targets) == 0 {
		return &AllocationPlan{
			Steps:                make([]AllocationStep, 0),
			TotalAllocated:       decimal.Zero,
			RemainingAmount:      amount.Amount(),
			FullyAllocated:       false,
			TargetsFullyPaid:     make([]uuid.UUID, 0),
			TargetsPartiallyPaid: make([]uuid.UUID, 0),
		}, nil
	}

	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].DueDate.Equal(sorted[j].DueDate) {
			return sorted[i].DueDate.Before(sorted[j].DueDate)
		}
		if !sorted[i].InvoiceDate.Equal(sorted[j].InvoiceDate) {
			return sorted[i].InvoiceDate.Before(sorted[j].InvoiceDate)
		}
		return strings.Compare(sorted[i].ID.String(), sorted[j].ID.String()) < 0
	})

	steps := make([]AllocationStep, 0)
	fullyPaid := make([]uuid.UUID, 0)
	partiallyPaid := make([]uuid.UUID, 0)
	remaining := amount.Amount()
	totalAllocated := decimal.Zero

	for _, target := range sorted {
		if remaining.IsZero() {
			break
		}
		if target.OutstandingAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		allocAmount := decimal.Min(remaining, target.OutstandingAmount)

		steps = append(steps, AllocationStep{
			TargetID:     target.ID,
			TargetNumber: target.Number,
			Amount:       allocAmount,
		})

		totalAllocated = totalAllocated.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.OutstandingAmount) {
			fullyPaid = append(fullyPaid, target.ID)
		} else {
			partiallyPaid = append(partiallyPaid, target.ID)
		}
	}

	return &AllocationPlan{
		Steps:                steps,
		TotalAllocated:       totalAllocated,
		RemainingAmount:      remaining,
		FullyAllocated:       remaining.IsZero(),
		TargetsFullyPaid:     fullyPaid,
		TargetsPartiallyPaid: partiallyPaid,
	}, nil
}

// PlanForReceivables plans the distribution of a payment's unallocated amount
// across the given receivables
func (s *WaterfallStrategy) PlanForReceivables(payment *Payment, receivables []Receivable) (*AllocationPlan, error) {
	if payment == nil {
		return nil, shared.ErrInvalidPayment
	}
	if payment.UnallocatedAmount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("NO_UNALLOCATED", "Payment has no unallocated amount")
	}

	targets := make([]AllocationTarget, 0, len(receivables))
	for _, r := range receivables {
		if r.Status.CanReceiveAllocation() && r.OutstandingAmount.GreaterThan(decimal.Zero) {
			targets = append(targets, AllocationTarget{
				ID:                r.ID,
				Number:            r.ReceivableNumber,
				OutstandingAmount: r.OutstandingAmount,
				DueDate:           r.DueDate,
				InvoiceDate:       r.InvoiceDate,
			})
		}
	}

	return s.Plan(valueobject.NewMoneyUSD(payment.UnallocatedAmount()), targets)
}
