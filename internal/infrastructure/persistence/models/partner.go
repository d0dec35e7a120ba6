package models

import (
	"github.com/erp/receivables/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	Code             string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name             string                 `gorm:"type:varchar(200);not null"`
	Status           partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	Email            string                 `gorm:"type:varchar(200)"`
	Phone            string                 `gorm:"type:varchar(50)"`
	PaymentTermsDays int                    `gorm:"not null;default:30"`
	TotalDebt        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	CreditBalance    decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Notes            string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.toDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Status:              m.Status,
		Email:               m.Email,
		Phone:               m.Phone,
		PaymentTermsDays:    m.PaymentTermsDays,
		TotalDebt:           m.TotalDebt,
		CreditBalance:       m.CreditBalance,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Status = c.Status
	m.Email = c.Email
	m.Phone = c.Phone
	m.PaymentTermsDays = c.PaymentTermsDays
	m.TotalDebt = c.TotalDebt
	m.CreditBalance = c.CreditBalance
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
