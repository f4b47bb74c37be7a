package domain_test

import (
	"testing"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCard(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   domain.CardType
	}{
		{"visa test number", "4242424242424242", domain.CardTypeVisa},
		{"visa short prefix", "4", domain.CardTypeVisa},
		{"mastercard 55", "5555555555554444", domain.CardTypeMastercard},
		{"mastercard 51", "5105105105105100", domain.CardTypeMastercard},
		{"mastercard 2-series low", "2221000000000009", domain.CardTypeMastercard},
		{"mastercard 2-series high", "2720990000000000", domain.CardTypeMastercard},
		{"outside 2-series", "2721000000000000", domain.CardTypeUnknown},
		{"50 is not mastercard", "5000000000000000", domain.CardTypeUnknown},
		{"56 is not mastercard", "5600000000000000", domain.CardTypeUnknown},
		{"amex 37", "378282246310005", domain.CardTypeAmex},
		{"amex 34", "341111111111111", domain.CardTypeAmex},
		{"unknown", "1234567890123456", domain.CardTypeUnknown},
		{"discover is unknown", "6011111111111117", domain.CardTypeUnknown},
		{"empty", "", domain.CardTypeUnknown},
		{"letters", "abcd", domain.CardTypeUnknown},
		{"mixed", "4242abcd", domain.CardTypeUnknown},
		{"dashes stripped", "4242-4242-4242-4242", domain.CardTypeVisa},
		{"spaces stripped", "3782 822463 10005", domain.CardTypeAmex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyCard(tt.number))
		})
	}
}

func TestClassifyCard_PrefixProperty(t *testing.T) {
	suffix := "000000000000"

	for _, p := range []string{"4", "40", "49", "4999"} {
		assert.Equal(t, domain.CardTypeVisa, domain.ClassifyCard(p+suffix), p)
	}
	for _, p := range []string{"51", "52", "53", "54", "55"} {
		assert.Equal(t, domain.CardTypeMastercard, domain.ClassifyCard(p+suffix), p)
	}
	for _, p := range []string{"34", "37"} {
		assert.Equal(t, domain.CardTypeAmex, domain.ClassifyCard(p+suffix), p)
	}
	for _, p := range []string{"0", "1", "30", "35", "36", "38", "6", "7", "8", "9"} {
		assert.Equal(t, domain.CardTypeUnknown, domain.ClassifyCard(p+suffix), p)
	}
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****-****-****-4242", domain.MaskCardNumber("4242424242424242"))
	assert.Equal(t, "****-****-****-0005", domain.MaskCardNumber("3782-822463-10005"))
	assert.Equal(t, "****-****-****-****", domain.MaskCardNumber("123"))
	assert.Equal(t, "****-****-****-****", domain.MaskCardNumber(""))
}
