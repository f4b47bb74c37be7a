package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	MsgHolderNameRequired = "Card holder name cannot be null or empty"
	MsgCVVRequired        = "CVV cannot be null or empty"
	MsgCVVFormat          = "CVV must be 3 or 4 digits"
	MsgExpiryMonth        = "Expiry month must be between 01 and 12"
	MsgExpiryYear         = "Expiry year must be a four-digit year"
	MsgCardNumberRequired = "Card number cannot be null or empty"
	MsgInvalidCardNumber  = "Invalid card number"
	MsgCardExpired        = "Card has expired (tarjeta expirada)"
	MsgCardValid          = "Card is valid"

	fullMask = "****-****-****-****"
)

// CardInput is the card data as submitted by a client. Month and year are
// kept as strings so malformed values can be reported instead of rejected
// at decode time.
type CardInput struct {
	Number      string
	ExpiryMonth string
	ExpiryYear  string
	CVV         string
	HolderName  string
}

// CardValidationResult is the outcome of validating a single card.
type CardValidationResult struct {
	Valid           bool
	Type            CardType
	MaskedNumber    string
	Message         string
	Expired         bool
	DaysUntilExpiry int
}

// MaskCardNumber hides everything but the last four digits.
func MaskCardNumber(number string) string {
	number = CleanCardNumber(number)
	if len(number) < 4 {
		return fullMask
	}
	return "****-****-****-" + number[len(number)-4:]
}

// ValidateCard checks a card's fields in a fixed order and computes its expiry
// state relative to asOf. Malformed input never panics; it produces an invalid
// result carrying the first failure's message.
func ValidateCard(card CardInput, asOf time.Time) CardValidationResult {
	if strings.TrimSpace(card.HolderName) == "" {
		return invalidCard(MsgHolderNameRequired)
	}

	cvv := strings.TrimSpace(card.CVV)
	if cvv == "" {
		return invalidCard(MsgCVVRequired)
	}
	if !isDigits(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return invalidCard(MsgCVVFormat)
	}

	month, ok := parseExpiryMonth(card.ExpiryMonth)
	if !ok {
		return invalidCard(MsgExpiryMonth)
	}
	year, ok := parseExpiryYear(card.ExpiryYear)
	if !ok {
		return invalidCard(MsgExpiryYear)
	}

	number := CleanCardNumber(card.Number)
	if number == "" {
		return invalidCard(MsgCardNumberRequired)
	}
	cardType := ClassifyCard(number)
	if !validCardNumber(number, cardType) {
		return invalidCard(MsgInvalidCardNumber)
	}

	days := DaysUntilExpiry(month, year, asOf)
	if days <= 0 {
		return CardValidationResult{
			Valid:           false,
			Type:            cardType,
			MaskedNumber:    MaskCardNumber(number),
			Message:         MsgCardExpired,
			Expired:         true,
			DaysUntilExpiry: days,
		}
	}

	return CardValidationResult{
		Valid:           true,
		Type:            cardType,
		MaskedNumber:    MaskCardNumber(number),
		Message:         MsgCardValid,
		Expired:         false,
		DaysUntilExpiry: days,
	}
}

// DaysUntilExpiry counts calendar days from asOf to the first day after the
// expiry month. A card stays usable through the last day of its expiry month,
// so the result is <= 0 exactly when the card has expired.
func DaysUntilExpiry(month time.Month, year int, asOf time.Time) int {
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	// month+1 normalises December into January of the next year.
	firstDayAfter := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	return int(firstDayAfter.Sub(today).Hours() / 24)
}

func invalidCard(message string) CardValidationResult {
	return CardValidationResult{
		Valid:        false,
		Type:         CardTypeUnknown,
		MaskedNumber: fullMask,
		Message:      message,
	}
}

func parseExpiryMonth(raw string) (time.Month, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 2 || !isDigits(raw) {
		return 0, false
	}
	m, _ := strconv.Atoi(raw)
	if m < 1 || m > 12 {
		return 0, false
	}
	return time.Month(m), true
}

func parseExpiryYear(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 4 || !isDigits(raw) {
		return 0, false
	}
	y, _ := strconv.Atoi(raw)
	return y, true
}

// validCardNumber applies the generic PAN format and, for recognised brands,
// the network length and Luhn checksum.
func validCardNumber(number string, cardType CardType) bool {
	if !isDigits(number) || len(number) < 12 || len(number) > 19 {
		return false
	}
	lengths, known := validLengths[cardType]
	if !known {
		return true
	}
	return slices.Contains(lengths, len(number)) && luhnValid(number)
}
