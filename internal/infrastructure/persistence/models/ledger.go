package models

import (
	"time"

	"github.com/erp/receivables/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableModel is the persistence model for the Receivable aggregate root.
type ReceivableModel struct {
	TenantAggregateModel
	ReceivableNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_receivable_tenant_number,priority:2"`
	CustomerID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	OriginReference   string                   `gorm:"type:varchar(100);not null;uniqueIndex:idx_receivable_tenant_origin,priority:2"`
	TotalAmount       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	WriteOffAmount    decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	Status            ledger.ReceivableStatus  `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	InvoiceDate       time.Time                `gorm:"not null"`
	DueDate           time.Time                `gorm:"not null;index"`
	Allocations       ledger.AllocationRecords `gorm:"type:jsonb;default:'[]'"`
	Remark            string                   `gorm:"type:text"`
	PaidAt            *time.Time
	OverdueAt         *time.Time
	WrittenOffAt      *time.Time
	WriteOffReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReceivableModel) TableName() string {
	return "receivables"
}

// ToDomain converts the persistence model to a domain Receivable entity.
func (m *ReceivableModel) ToDomain() *ledger.Receivable {
	return &ledger.Receivable{
		TenantAggregateRoot: m.toDomainTenantAggregateRoot(),
		ReceivableNumber:    m.ReceivableNumber,
		CustomerID:          m.CustomerID,
		OriginReference:     m.OriginReference,
		TotalAmount:         m.TotalAmount,
		PaidAmount:          m.PaidAmount,
		WriteOffAmount:      m.WriteOffAmount,
		OutstandingAmount:   m.OutstandingAmount,
		Status:              m.Status,
		InvoiceDate:         m.InvoiceDate,
		DueDate:             m.DueDate,
		Allocations:         m.Allocations,
		Remark:              m.Remark,
		PaidAt:              m.PaidAt,
		OverdueAt:           m.OverdueAt,
		WrittenOffAt:        m.WrittenOffAt,
		WriteOffReason:      m.WriteOffReason,
	}
}

// FromDomain populates the persistence model from a domain Receivable entity.
func (m *ReceivableModel) FromDomain(r *ledger.Receivable) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ReceivableNumber = r.ReceivableNumber
	m.CustomerID = r.CustomerID
	m.OriginReference = r.OriginReference
	m.TotalAmount = r.TotalAmount
	m.PaidAmount = r.PaidAmount
	m.WriteOffAmount = r.WriteOffAmount
	m.OutstandingAmount = r.OutstandingAmount
	m.Status = r.Status
	m.InvoiceDate = r.InvoiceDate
	m.DueDate = r.DueDate
	m.Allocations = r.Allocations
	m.Remark = r.Remark
	m.PaidAt = r.PaidAt
	m.OverdueAt = r.OverdueAt
	m.WrittenOffAt = r.WrittenOffAt
	m.WriteOffReason = r.WriteOffReason
}

// ReceivableModelFromDomain creates a new persistence model from a domain Receivable.
func ReceivableModelFromDomain(r *ledger.Receivable) *ReceivableModel {
	m := &ReceivableModel{}
	m.FromDomain(r)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Payments are append-only; rows are never updated after the payment
// is fully distributed.
type PaymentModel struct {
	TenantAggregateModel
	PaymentNumber    string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	CustomerID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount  decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	CreditedAmount   decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PaymentMethod    ledger.PaymentMethod      `gorm:"type:varchar(20);not null"`
	PaymentReference string                    `gorm:"type:varchar(100)"`
	ReceivedAt       time.Time                 `gorm:"not null;index"`
	Allocations      ledger.PaymentAllocations `gorm:"type:jsonb;default:'[]'"`
	Remark           string                    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		TenantAggregateRoot: m.toDomainTenantAggregateRoot(),
		PaymentNumber:       m.PaymentNumber,
		CustomerID:          m.CustomerID,
		Amount:              m.Amount,
		AllocatedAmount:     m.AllocatedAmount,
		CreditedAmount:      m.CreditedAmount,
		PaymentMethod:       m.PaymentMethod,
		PaymentReference:    m.PaymentReference,
		ReceivedAt:          m.ReceivedAt,
		Allocations:         m.Allocations,
		Remark:              m.Remark,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount
	m.AllocatedAmount = p.AllocatedAmount
	m.CreditedAmount = p.CreditedAmount
	m.PaymentMethod = p.PaymentMethod
	m.PaymentReference = p.PaymentReference
	m.ReceivedAt = p.ReceivedAt
	m.Allocations = p.Allocations
	m.Remark = p.Remark
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
