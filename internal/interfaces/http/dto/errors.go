package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInvalidAmount is used when a monetary amount fails validation
	ErrCodeInvalidAmount = "ERR_INVALID_AMOUNT"
	// ErrCodeDuplicateOrigin is used when an origin reference already has a receivable
	ErrCodeDuplicateOrigin = "ERR_DUPLICATE_ORIGIN"
	// ErrCodeOverAllocation is used when an allocation exceeds the outstanding amount
	ErrCodeOverAllocation = "ERR_OVER_ALLOCATION"
	// ErrCodeInvalidPayment is used when a payment fails validation
	ErrCodeInvalidPayment = "ERR_INVALID_PAYMENT"
	// ErrCodeCurrencyMismatch is used when amounts in different currencies are combined
	ErrCodeCurrencyMismatch = "ERR_CURRENCY_MISMATCH"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateOrigin:     http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeOverAllocation:   http.StatusUnprocessableEntity,
	ErrCodeInvalidPayment:   http.StatusUnprocessableEntity,
	ErrCodeCurrencyMismatch: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidJSON:   http.StatusBadRequest,
	ErrCodeInvalidAmount: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized wire codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_AMOUNT":         ErrCodeInvalidAmount,
	"DUPLICATE_ORIGIN":       ErrCodeDuplicateOrigin,
	"OVER_ALLOCATION":        ErrCodeOverAllocation,
	"INVALID_PAYMENT":        ErrCodeInvalidPayment,
	"INVALID_PAYMENT_METHOD": ErrCodeInvalidPayment,
	"CURRENCY_MISMATCH":      ErrCodeCurrencyMismatch,
	"INVALID_STATE":          ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"OPTIMISTIC_LOCK_ERROR":  ErrCodeConcurrencyConflict,
	"INSUFFICIENT_CREDIT":    ErrCodeBusinessRule,
	"NO_UNALLOCATED":         ErrCodeBusinessRule,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"BAD_REQUEST":            ErrCodeBadRequest,
	"INTERNAL_ERROR":         ErrCodeInternal,

	// Field-level domain validation codes all surface as invalid input
	"INVALID_CODE":              ErrCodeInvalidInput,
	"INVALID_CUSTOMER":          ErrCodeInvalidInput,
	"INVALID_DUE_DATE":          ErrCodeInvalidInput,
	"INVALID_NAME":              ErrCodeInvalidInput,
	"INVALID_ORIGIN":            ErrCodeInvalidInput,
	"INVALID_PAYMENT_NUMBER":    ErrCodeInvalidInput,
	"INVALID_PAYMENT_TERMS":     ErrCodeInvalidInput,
	"INVALID_REASON":            ErrCodeInvalidInput,
	"INVALID_RECEIVABLE":        ErrCodeInvalidInput,
	"INVALID_RECEIVABLE_NUMBER": ErrCodeInvalidInput,
	"INVALID_STATUS":            ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
