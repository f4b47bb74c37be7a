package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeDuplicateReference     = "DUPLICATE_PAYMENT_REFERENCE"
	ErrCodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

var (
	ErrInvalidTransition      = errors.New("invalid payment status transition")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrDuplicateReference     = errors.New("payment reference already exists")
	ErrConcurrentModification = errors.New("payment was modified concurrently")
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
		Err:     ErrMissingRequiredField,
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewPaymentNotFoundError(key string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment %s not found", key),
		Err:     ErrPaymentNotFound,
	}
}

func NewDuplicateReferenceError(reference string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateReference,
		Message: fmt.Sprintf("payment reference %s already exists", reference),
		Err:     ErrDuplicateReference,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// FieldError names one violated field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field a request violated.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Summary()
}

// Summary joins the field messages for display.
func (e *ValidationError) Summary() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// HasField reports whether the named field was among the violations.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}
