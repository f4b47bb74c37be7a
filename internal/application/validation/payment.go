// Package validation checks payment intake requests before any processor or
// repository sees them.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(19,4).
const amountScale = 4

var maxAmount = decimal.New(1, 19-amountScale)

// requestFields maps struct fields to the names clients send.
var requestFields = map[string]string{
	"Reference":  "paymentReference",
	"Amount":     "amount",
	"Currency":   "currency",
	"Method":     "paymentMethod",
	"CustomerID": "customerId",
	"MerchantID": "merchantId",
	"Email":      "paymentDetails.email",
	"ReturnURL":  "paymentDetails.returnUrl",
	"CancelURL":  "paymentDetails.cancelUrl",
}

type PaymentValidator struct {
	validate *validator.Validate
	details  *DetailValidator
}

func NewPaymentValidator(currencies domain.CurrencySet, details *DetailValidator) *PaymentValidator {
	validate := newValidate()
	_ = validate.RegisterValidation("supported_currency", func(fl validator.FieldLevel) bool {
		return currencies.Supports(fl.Field().String())
	})
	_ = validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethod(fl.Field().String()).IsKnown()
	})

	return &PaymentValidator{
		validate: validate,
		details:  details,
	}
}

// Validate checks every rule and reports all violations at once. It returns
// nil or a *domain.ValidationError.
func (v *PaymentValidator) Validate(req domain.PaymentRequest) error {
	fields, err := structFieldErrors(v.validate, req)
	if err != nil {
		return err
	}
	fields = append(fields, amountFieldErrors(req.Amount)...)
	fields = append(fields, v.details.Validate(req.Method, req.Details)...)

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}

// amountFieldErrors checks what the gt=0 tag cannot see once the amount is a
// float64: the number of decimal places and the column's integer digits.
func amountFieldErrors(amount decimal.Decimal) []domain.FieldError {
	if !amount.IsPositive() {
		return nil
	}

	var fields []domain.FieldError
	if !amount.Equal(amount.Truncate(amountScale)) {
		fields = append(fields, domain.FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("amount must have at most %d decimal places", amountScale),
		})
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		fields = append(fields, domain.FieldError{
			Field:   "amount",
			Message: "amount must be less than " + maxAmount.String(),
		})
	}
	return fields
}

func newValidate() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return validate
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func structFieldErrors(validate *validator.Validate, s interface{}) ([]domain.FieldError, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}

	fields := make([]domain.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		name := fieldName(fe.Field())
		fields = append(fields, domain.FieldError{
			Field:   name,
			Message: fieldMessage(name, fe),
		})
	}
	return fields, nil
}

func fieldName(structField string) string {
	if name, ok := requestFields[structField]; ok {
		return name
	}
	return structField
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	case "supported_currency":
		return fmt.Sprintf("currency %v is not supported", fe.Value())
	case "payment_method":
		return fmt.Sprintf("payment method %v is not supported", fe.Value())
	case "email":
		return name + " must be a valid email address"
	case "http_url":
		return name + " must be an absolute http or https URL"
	default:
		return name + " is invalid"
	}
}
