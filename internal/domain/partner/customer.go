package partner

import (
	"regexp"
	"strings"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended" // Suspended due to credit issues
)

// DefaultPaymentTermsDays is the fallback term applied when a customer has none configured
const DefaultPaymentTermsDays = 30

var customerCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Customer represents a customer in the partner context
// It carries the billing profile plus a projection of the customer's
// receivable position (total debt and unapplied credit)
type Customer struct {
	shared.TenantAggregateRoot
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Status           CustomerStatus  `json:"status"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	PaymentTermsDays int             `json:"payment_terms_days"` // Days from delivery to due date
	TotalDebt        decimal.Decimal `json:"total_debt"`         // Sum of outstanding, excluding write-offs
	CreditBalance    decimal.Decimal `json:"credit_balance"`     // Unapplied payment credit
	Notes            string          `json:"notes"`
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string, paymentTermsDays int) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	if paymentTermsDays == 0 {
		paymentTermsDays = DefaultPaymentTermsDays
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CustomerStatusActive,
		PaymentTermsDays:    paymentTermsDays,
		TotalDebt:           decimal.Zero,
		CreditBalance:       decimal.Zero,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name, email, phone string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.IncrementVersion()

	return nil
}

// UpdateProfile applies a full profile edit as one version change.
// Nil optional fields keep their current value.
func (c *Customer) UpdateProfile(name, email, phone string, paymentTermsDays *int, notes *string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if paymentTermsDays != nil && *paymentTermsDays <= 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be positive")
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	if paymentTermsDays != nil {
		c.PaymentTermsDays = *paymentTermsDays
	}
	if notes != nil {
		c.Notes = *notes
	}
	c.IncrementVersion()

	return nil
}

// SetPaymentTerms updates the customer's payment terms
func (c *Customer) SetPaymentTerms(days int) error {
	if days <= 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be positive")
	}

	c.PaymentTermsDays = days
	c.IncrementVersion()

	return nil
}

// AddDebt increases the customer's total debt projection
func (c *Customer) AddDebt(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}

	c.TotalDebt = c.TotalDebt.Add(amount)
	c.IncrementVersion()

	return nil
}

// ReduceDebt decreases the customer's total debt projection
// Used when receivables are settled or written off
func (c *Customer) ReduceDebt(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(c.TotalDebt) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debt reduction exceeds current total debt")
	}

	c.TotalDebt = c.TotalDebt.Sub(amount)
	c.IncrementVersion()

	return nil
}

// SetTotalDebt replaces the debt projection with a recomputed value
func (c *Customer) SetTotalDebt(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.ErrInvalidAmount
	}

	c.TotalDebt = amount
	c.IncrementVersion()

	return nil
}

// AddCredit increases the customer's unapplied credit balance
func (c *Customer) AddCredit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}

	c.CreditBalance = c.CreditBalance.Add(amount)
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerCreditedEvent(c, amount))

	return nil
}

// ApplyPaymentOutcome settles the debt and credit movement of one payment
// as a single projection update
func (c *Customer) ApplyPaymentOutcome(allocated, credited decimal.Decimal) error {
	if allocated.IsNegative() || credited.IsNegative() {
		return shared.ErrInvalidAmount
	}
	if allocated.IsZero() && credited.IsZero() {
		return shared.ErrInvalidAmount
	}
	if allocated.GreaterThan(c.TotalDebt) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debt reduction exceeds current total debt")
	}

	c.TotalDebt = c.TotalDebt.Sub(allocated)
	c.CreditBalance = c.CreditBalance.Add(credited)
	c.IncrementVersion()

	if credited.GreaterThan(decimal.Zero) {
		c.AddDomainEvent(NewCustomerCreditedEvent(c, credited))
	}

	return nil
}

// ConsumeCredit decreases the customer's unapplied credit balance
func (c *Customer) ConsumeCredit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.GreaterThan(c.CreditBalance) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT", "Credit consumption exceeds available balance")
	}

	c.CreditBalance = c.CreditBalance.Sub(amount)
	c.IncrementVersion()

	return nil
}

// Activate marks the customer as active
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.IncrementVersion()
	return nil
}

// Deactivate marks the customer as inactive
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Customer code cannot exceed 50 characters")
	}
	if !customerCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Customer code can only contain letters, numbers, hyphens and underscores")
	}
	return nil
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}
