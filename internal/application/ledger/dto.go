package ledger

import (
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableResponse represents a receivable in API responses
type ReceivableResponse struct {
	ID                uuid.UUID                  `json:"id"`
	TenantID          uuid.UUID                  `json:"tenant_id"`
	ReceivableNumber  string                     `json:"receivable_number"`
	CustomerID        uuid.UUID                  `json:"customer_id"`
	OriginReference   string                     `json:"origin_reference"`
	TotalAmount       decimal.Decimal            `json:"total_amount"`
	PaidAmount        decimal.Decimal            `json:"paid_amount"`
	WriteOffAmount    decimal.Decimal            `json:"write_off_amount"`
	OutstandingAmount decimal.Decimal            `json:"outstanding_amount"`
	Status            string                     `json:"status"`
	InvoiceDate       time.Time                  `json:"invoice_date"`
	DueDate           time.Time                  `json:"due_date"`
	Allocations       []AllocationRecordResponse `json:"allocations,omitempty"`
	Remark            string                     `json:"remark,omitempty"`
	PaidAt            *time.Time                 `json:"paid_at,omitempty"`
	WrittenOffAt      *time.Time                 `json:"written_off_at,omitempty"`
	WriteOffReason    string                     `json:"write_off_reason,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
	Version           int                        `json:"version"`
}

// AllocationRecordResponse represents an allocation record in API responses
type AllocationRecordResponse struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
	Remark    string          `json:"remark,omitempty"`
}

func toReceivableResponse(r *ledger.Receivable) *ReceivableResponse {
	allocations := make([]AllocationRecordResponse, len(r.Allocations))
	for i, a := range r.Allocations {
		allocations[i] = AllocationRecordResponse{
			ID:        a.ID,
			PaymentID: a.PaymentID,
			Amount:    a.Amount,
			AppliedAt: a.AppliedAt,
			Remark:    a.Remark,
		}
	}

	return &ReceivableResponse{
		ID:                r.ID,
		TenantID:          r.TenantID,
		ReceivableNumber:  r.ReceivableNumber,
		CustomerID:        r.CustomerID,
		OriginReference:   r.OriginReference,
		TotalAmount:       r.TotalAmount,
		PaidAmount:        r.PaidAmount,
		WriteOffAmount:    r.WriteOffAmount,
		OutstandingAmount: r.OutstandingAmount,
		Status:            r.Status.String(),
		InvoiceDate:       r.InvoiceDate,
		DueDate:           r.DueDate,
		Allocations:       allocations,
		Remark:            r.Remark,
		PaidAt:            r.PaidAt,
		WrittenOffAt:      r.WrittenOffAt,
		WriteOffReason:    r.WriteOffReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID                   `json:"id"`
	TenantID         uuid.UUID                   `json:"tenant_id"`
	PaymentNumber    string                      `json:"payment_number"`
	CustomerID       uuid.UUID                   `json:"customer_id"`
	Amount           decimal.Decimal             `json:"amount"`
	AllocatedAmount  decimal.Decimal             `json:"allocated_amount"`
	CreditedAmount   decimal.Decimal             `json:"credited_amount"`
	PaymentMethod    string                      `json:"payment_method"`
	PaymentReference string                      `json:"payment_reference,omitempty"`
	ReceivedAt       time.Time                   `json:"received_at"`
	Allocations      []PaymentAllocationResponse `json:"allocations,omitempty"`
	Remark           string                      `json:"remark,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// PaymentAllocationResponse represents a payment allocation in API responses
type PaymentAllocationResponse struct {
	ID               uuid.UUID       `json:"id"`
	ReceivableID     uuid.UUID       `json:"receivable_id"`
	ReceivableNumber string          `json:"receivable_number"`
	Amount           decimal.Decimal `json:"amount"`
	AllocatedAt      time.Time       `json:"allocated_at"`
}

func toPaymentResponse(p *ledger.Payment) *PaymentResponse {
	allocations := make([]PaymentAllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = PaymentAllocationResponse{
			ID:               a.ID,
			ReceivableID:     a.ReceivableID,
			ReceivableNumber: a.ReceivableNumber,
			Amount:           a.Amount,
			AllocatedAt:      a.AllocatedAt,
		}
	}

	return &PaymentResponse{
		ID:               p.ID,
		TenantID:         p.TenantID,
		PaymentNumber:    p.PaymentNumber,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		AllocatedAmount:  p.AllocatedAmount,
		CreditedAmount:   p.CreditedAmount,
		PaymentMethod:    p.PaymentMethod.String(),
		PaymentReference: p.PaymentReference,
		ReceivedAt:       p.ReceivedAt,
		Allocations:      allocations,
		Remark:           p.Remark,
		CreatedAt:        p.CreatedAt,
	}
}

// ReceivableListFilter defines filtering options for receivable list queries
type ReceivableListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	DueFrom    *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo      *time.Time `form:"due_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	CustomerID   *uuid.UUID `form:"customer_id"`
	ReceivedFrom *time.Time `form:"received_from" time_format:"2006-01-02"`
	ReceivedTo   *time.Time `form:"received_to" time_format:"2006-01-02"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}
