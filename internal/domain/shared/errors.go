package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrDuplicateOrigin     = NewDomainError("DUPLICATE_ORIGIN", "A receivable already exists for this origin reference")
	ErrInvalidAmount       = NewDomainError("INVALID_AMOUNT", "Amount must be a positive value")
	ErrOverAllocation      = NewDomainError("OVER_ALLOCATION", "Allocation exceeds the outstanding amount")
	ErrInvalidPayment      = NewDomainError("INVALID_PAYMENT", "Payment is not valid for allocation")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrCurrencyMismatch    = NewDomainError("CURRENCY_MISMATCH", "Amounts are denominated in different currencies")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
