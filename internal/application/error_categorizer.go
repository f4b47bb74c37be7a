package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// ErrorCategory represents the nature of an error for logging and reconciliation
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines the error category
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	// Context Errors (Transient - network/timeout issues)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	// Validation failures are always the caller's to fix
	if _, ok := domain.IsValidationError(err); ok {
		return CategoryClientError
	}

	if errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrInvalidTransition) {
		return CategoryBusinessRule
	}

	if errors.Is(err, domain.ErrPaymentNotFound) ||
		errors.Is(err, domain.ErrDuplicateReference) ||
		errors.Is(err, domain.ErrMissingRequiredField) {
		return CategoryClientError
	}

	// Processor errors are checked before ServiceError so that a wrapped
	// gateway failure keeps its retry semantics.
	if gwErr, ok := IsGatewayError(err); ok {
		if gwErr.IsRetryable() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeDuplicateReference:
			return CategoryClientError
		case ErrCodeInvalidState:
			return CategoryBusinessRule
		case ErrCodeInternal, ErrCodeNoProcessor:
			return CategoryInfrastructure
		case ErrCodeGatewayFailure:
			return CategoryTransient
		}
	}

	if errors.Is(err, domain.ErrConcurrentModification) {
		return CategoryTransient
	}

	// Default: Infrastructure
	return CategoryInfrastructure
}

// IsRetryable returns true if the error category suggests a later attempt may succeed
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	if _, ok := domain.IsValidationError(err); ok {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingRequiredField):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateReference),
		errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict

	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	if _, ok := IsGatewayError(err); ok {
		return http.StatusBadGateway
	}

	// Default to 500
	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	if _, ok := domain.IsValidationError(err); ok {
		return domain.ErrCodeValidationFailed
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return domain.ErrCodeInvalidAmount
	case errors.Is(err, domain.ErrInvalidTransition):
		return domain.ErrCodeInvalidTransition
	case errors.Is(err, domain.ErrPaymentNotFound):
		return domain.ErrCodePaymentNotFound
	case errors.Is(err, domain.ErrDuplicateReference):
		return domain.ErrCodeDuplicateReference
	case errors.Is(err, domain.ErrConcurrentModification):
		return domain.ErrCodeConcurrentModification
	}

	if gwErr, ok := IsGatewayError(err); ok {
		return strings.ToUpper(gwErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	return ErrCodeInternal
}
