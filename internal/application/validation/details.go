package validation

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/go-playground/validator"
)

type payPalFields struct {
	Email     string `validate:"required,email"`
	ReturnURL string `validate:"required,http_url"`
	CancelURL string `validate:"required,http_url"`
}

// DetailValidator checks the method-specific part of a payment request.
type DetailValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewDetailValidator builds a validator that judges card expiry against now.
func NewDetailValidator(now func() time.Time) *DetailValidator {
	if now == nil {
		now = time.Now
	}
	return &DetailValidator{
		validate: newValidate(),
		now:      now,
	}
}

func (d *DetailValidator) Validate(method domain.PaymentMethod, details domain.PaymentDetails) []domain.FieldError {
	if details == nil {
		return []domain.FieldError{{Field: "paymentDetails", Message: "paymentDetails is required"}}
	}

	var fields []domain.FieldError
	if method.IsKnown() && details.Method() != method {
		fields = append(fields, domain.FieldError{
			Field:   "paymentDetails.type",
			Message: fmt.Sprintf("payment details type %s does not match payment method %s", details.Method(), method),
		})
	}

	switch det := details.(type) {
	case domain.CardDetails:
		result := domain.ValidateCard(det.Card, d.now())
		if !result.Valid {
			fields = append(fields, domain.FieldError{Field: "paymentDetails", Message: result.Message})
		}
	case domain.PayPalDetails:
		payPalErrs, err := structFieldErrors(d.validate, payPalFields(det))
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "paymentDetails", Message: err.Error()})
		}
		fields = append(fields, payPalErrs...)
	default:
		fields = append(fields, domain.FieldError{
			Field:   "paymentDetails.type",
			Message: fmt.Sprintf("unsupported payment details %T", details),
		})
	}

	return fields
}
