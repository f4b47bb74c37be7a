package gateway

import (
	"fmt"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	feeRate  = decimal.RequireFromString("0.029")
	fixedFee = decimal.RequireFromString("0.30")
)

// Limits bound what a processor will accept. A nil Currencies set accepts
// every currency that passed intake validation.
type Limits struct {
	Min        decimal.Decimal
	Max        decimal.Decimal
	Currencies domain.CurrencySet
}

var (
	StripeLimits = Limits{
		Min: decimal.RequireFromString("0.50"),
		Max: decimal.RequireFromString("999999.99"),
	}
	PayPalLimits = Limits{
		Min:        decimal.RequireFromString("1.00"),
		Max:        decimal.RequireFromString("10000.00"),
		Currencies: domain.NewCurrencySet("USD", "EUR", "GBP", "CAD", "AUD", "JPY"),
	}
)

// Check returns a decline reason, or "" when the request is within limits.
func (l Limits) Check(req domain.PaymentRequest) string {
	if l.Currencies != nil && !l.Currencies.Supports(req.Currency) {
		return fmt.Sprintf("currency %s is not supported by this processor", domain.NormalizeCurrency(req.Currency))
	}
	if req.Amount.LessThan(l.Min) {
		return fmt.Sprintf("amount is below the processor minimum of %s", l.Min.StringFixed(2))
	}
	if req.Amount.GreaterThan(l.Max) {
		return fmt.Sprintf("amount exceeds the processor maximum of %s", l.Max.StringFixed(2))
	}
	return ""
}

// EstimateFee is the standard card-not-present fee: 2.9% plus 0.30.
func EstimateFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(feeRate).Add(fixedFee).Round(2)
}
