package partner

import (
	"time"

	"github.com/erp/receivables/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Code             string `json:"code" binding:"required,max=50"`
	Name             string `json:"name" binding:"required,max=200"`
	Email            string `json:"email" binding:"omitempty,email"`
	Phone            string `json:"phone" binding:"omitempty,max=50"`
	PaymentTermsDays int    `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
	Notes            string `json:"notes,omitempty"`
}

// UpdateCustomerRequest represents a request to update a customer's profile
type UpdateCustomerRequest struct {
	Name             string  `json:"name" binding:"required,max=200"`
	Email            string  `json:"email" binding:"omitempty,email"`
	Phone            string  `json:"phone" binding:"omitempty,max=50"`
	PaymentTermsDays *int    `json:"payment_terms_days,omitempty" binding:"omitempty,min=1,max=365"`
	Notes            *string `json:"notes,omitempty"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Status           string          `json:"status"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	CreditBalance    decimal.Decimal `json:"credit_balance"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CustomerListFilter defines filtering options for customer list queries
type CustomerListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		Code:             c.Code,
		Name:             c.Name,
		Status:           string(c.Status),
		Email:            c.Email,
		Phone:            c.Phone,
		PaymentTermsDays: c.PaymentTermsDays,
		TotalDebt:        c.TotalDebt,
		CreditBalance:    c.CreditBalance,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}
