package domain

import (
	"strconv"
	"strings"
)

// CardType is the network that issued a card, inferred from its number.
type CardType string

const (
	CardTypeVisa       CardType = "VISA"
	CardTypeMastercard CardType = "MASTERCARD"
	CardTypeAmex       CardType = "AMEX"
	CardTypeUnknown    CardType = "UNKNOWN"
)

// CleanCardNumber removes the spaces and dashes customers use to group digits.
func CleanCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return -1
		}
		return r
	}, number)
}

// ClassifyCard returns the brand for a card number. It never fails: anything
// it cannot recognise, including empty or non-numeric input, is UNKNOWN.
func ClassifyCard(number string) CardType {
	number = CleanCardNumber(number)
	if number == "" || !isDigits(number) {
		return CardTypeUnknown
	}

	switch {
	case strings.HasPrefix(number, "4"):
		return CardTypeVisa
	case prefixInRange(number, 2, 51, 55), prefixInRange(number, 4, 2221, 2720):
		return CardTypeMastercard
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return CardTypeAmex
	default:
		return CardTypeUnknown
	}
}

// validLengths holds the PAN lengths each network issues.
var validLengths = map[CardType][]int{
	CardTypeVisa:       {13, 16, 19},
	CardTypeMastercard: {16},
	CardTypeAmex:       {15},
}

func prefixInRange(number string, digits, low, high int) bool {
	if len(number) < digits {
		return false
	}
	prefix, err := strconv.Atoi(number[:digits])
	if err != nil {
		return false
	}
	return prefix >= low && prefix <= high
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// luhnValid reports whether a digit string passes the mod-10 checksum.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}
