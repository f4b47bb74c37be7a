package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "PAYMENT_NOT_FOUND"
	ErrCodeDuplicateReference = "DUPLICATE_PAYMENT_REFERENCE"
	ErrCodeGatewayFailure     = "GATEWAY_FAILURE"
	ErrCodeNoProcessor        = "NO_PROCESSOR"
	ErrCodeInvalidState       = "INVALID_PAYMENT_STATE"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotFoundError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "Payment not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewDuplicateReferenceError(reference string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeDuplicateReference,
		Message:    fmt.Sprintf("Payment reference %s has already been used", reference),
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewInvalidStateError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidState,
		Message:    "Payment is not in a valid state for this operation",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewGatewayFailureError marks a collaborator failure so it is never reported
// as a validation problem.
func NewGatewayFailureError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGatewayFailure,
		Message:    "Payment processor is unavailable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewNoProcessorError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNoProcessor,
		Message:    "No payment processor is configured for this payment method",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// GatewayError is a failure reported by, or while reaching, a processor.
type GatewayError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s error [%s]: %s (status: %d)", e.Provider, e.Code, e.Message, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
