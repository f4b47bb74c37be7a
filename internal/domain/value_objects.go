package domain

import (
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencies are the ISO-4217 codes accepted when none are configured.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "SEK", "NOK", "DKK"}

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = []string{"JPY"}

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	currency = NormalizeCurrency(currency)
	if currency == "" {
		return Money{}, errors.New("currency is required")
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MinorUnits converts the amount into the smallest currency unit, rounding
// half away from zero.
func (m Money) MinorUnits() int64 {
	if IsZeroDecimalCurrency(m.Currency) {
		return m.Amount.Round(0).IntPart()
	}
	return m.Amount.Shift(2).Round(0).IntPart()
}

// Format renders the amount with the currency's number of decimal places.
func (m Money) Format() string {
	if IsZeroDecimalCurrency(m.Currency) {
		return m.Amount.StringFixed(0)
	}
	return m.Amount.StringFixed(2)
}

func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func IsZeroDecimalCurrency(code string) bool {
	return slices.Contains(zeroDecimalCurrencies, NormalizeCurrency(code))
}

// CurrencySet is a case-insensitive set of supported currency codes.
type CurrencySet map[string]struct{}

func NewCurrencySet(codes ...string) CurrencySet {
	set := make(CurrencySet, len(codes))
	for _, c := range codes {
		if c = NormalizeCurrency(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

func (s CurrencySet) Supports(code string) bool {
	_, ok := s[NormalizeCurrency(code)]
	return ok
}

// Codes returns the set's members in sorted order.
func (s CurrencySet) Codes() []string {
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}
