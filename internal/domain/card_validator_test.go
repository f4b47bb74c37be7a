package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func validVisa() domain.CardInput {
	return domain.CardInput{
		Number:      "4242424242424242",
		ExpiryMonth: "12",
		ExpiryYear:  "2028",
		CVV:         "123",
		HolderName:  "John Doe",
	}
}

func TestValidateCard_Valid(t *testing.T) {
	t.Run("visa", func(t *testing.T) {
		result := domain.ValidateCard(validVisa(), asOf)

		assert.True(t, result.Valid)
		assert.False(t, result.Expired)
		assert.Equal(t, domain.CardTypeVisa, result.Type)
		assert.Equal(t, "****-****-****-4242", result.MaskedNumber)
		assert.Contains(t, result.MaskedNumber, "****")
		assert.True(t, strings.HasSuffix(result.MaskedNumber, "4242"))
		assert.Greater(t, result.DaysUntilExpiry, 0)
	})

	t.Run("mastercard", func(t *testing.T) {
		card := validVisa()
		card.Number = "5555555555554444"
		card.ExpiryMonth = "08"
		card.ExpiryYear = "2027"
		card.CVV = "456"

		result := domain.ValidateCard(card, asOf)

		assert.True(t, result.Valid)
		assert.Equal(t, domain.CardTypeMastercard, result.Type)
		assert.Equal(t, "****-****-****-4444", result.MaskedNumber)
	})

	t.Run("amex with four digit cvv", func(t *testing.T) {
		card := validVisa()
		card.Number = "378282246310005"
		card.CVV = "1234"

		result := domain.ValidateCard(card, asOf)

		assert.True(t, result.Valid)
		assert.Equal(t, domain.CardTypeAmex, result.Type)
		assert.Equal(t, "****-****-****-0005", result.MaskedNumber)
	})

	t.Run("unknown brand still validates", func(t *testing.T) {
		card := validVisa()
		card.Number = "1234567890123456"

		result := domain.ValidateCard(card, asOf)

		assert.True(t, result.Valid)
		assert.Equal(t, domain.CardTypeUnknown, result.Type)
		assert.Equal(t, "****-****-****-3456", result.MaskedNumber)
	})

	t.Run("formatted number", func(t *testing.T) {
		card := validVisa()
		card.Number = "4242 4242 4242 4242"

		result := domain.ValidateCard(card, asOf)

		assert.True(t, result.Valid)
		assert.Equal(t, domain.CardTypeVisa, result.Type)
	})
}

func TestValidateCard_Order(t *testing.T) {
	t.Run("holder name checked first", func(t *testing.T) {
		card := domain.CardInput{
			Number:      "not-a-number",
			ExpiryMonth: "13",
			ExpiryYear:  "20",
			CVV:         "",
			HolderName:  "   ",
		}

		result := domain.ValidateCard(card, asOf)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Message, "Card holder name cannot be null or empty")
		assert.Equal(t, domain.CardTypeUnknown, result.Type)
		assert.Equal(t, "****-****-****-****", result.MaskedNumber)
		assert.False(t, result.Expired)
		assert.Zero(t, result.DaysUntilExpiry)
	})

	t.Run("empty cvv before expiry", func(t *testing.T) {
		card := validVisa()
		card.CVV = ""
		card.ExpiryYear = "2020"

		result := domain.ValidateCard(card, asOf)

		assert.False(t, result.Valid)
		assert.False(t, result.Expired)
		assert.Contains(t, result.Message, "CVV cannot be null or empty")
	})

	t.Run("month before number", func(t *testing.T) {
		card := validVisa()
		card.ExpiryMonth = "13"
		card.Number = "123"

		result := domain.ValidateCard(card, asOf)

		assert.False(t, result.Valid)
		assert.Contains(t, result.Message, "between 01 and 12")
	})
}

func TestValidateCard_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CardInput)
		message string
	}{
		{"cvv too long", func(c *domain.CardInput) { c.CVV = "12345" }, domain.MsgCVVFormat},
		{"cvv too short", func(c *domain.CardInput) { c.CVV = "12" }, domain.MsgCVVFormat},
		{"cvv letters", func(c *domain.CardInput) { c.CVV = "12a" }, domain.MsgCVVFormat},
		{"month zero", func(c *domain.CardInput) { c.ExpiryMonth = "00" }, "between 01 and 12"},
		{"month single digit", func(c *domain.CardInput) { c.ExpiryMonth = "1" }, "between 01 and 12"},
		{"month text", func(c *domain.CardInput) { c.ExpiryMonth = "ab" }, "between 01 and 12"},
		{"two digit year", func(c *domain.CardInput) { c.ExpiryYear = "28" }, domain.MsgExpiryYear},
		{"empty number", func(c *domain.CardInput) { c.Number = "" }, domain.MsgCardNumberRequired},
		{"letters in number", func(c *domain.CardInput) { c.Number = "4242abcd42424242" }, domain.MsgInvalidCardNumber},
		{"too short", func(c *domain.CardInput) { c.Number = "42424242" }, domain.MsgInvalidCardNumber},
		{"too long", func(c *domain.CardInput) { c.Number = "42424242424242424242" }, domain.MsgInvalidCardNumber},
		{"visa failing luhn", func(c *domain.CardInput) { c.Number = "4242424242424241" }, domain.MsgInvalidCardNumber},
		{"visa wrong length", func(c *domain.CardInput) { c.Number = "42424242424242" }, domain.MsgInvalidCardNumber},
		{"amex wrong length", func(c *domain.CardInput) { c.Number = "3782822463100050" }, domain.MsgInvalidCardNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validVisa()
			tt.mutate(&card)

			result := domain.ValidateCard(card, asOf)

			assert.False(t, result.Valid)
			assert.False(t, result.Expired)
			assert.Contains(t, result.Message, tt.message)
			assert.Equal(t, "****-****-****-****", result.MaskedNumber)
		})
	}
}

func TestValidateCard_Expiry(t *testing.T) {
	t.Run("year in the past", func(t *testing.T) {
		card := validVisa()
		card.ExpiryMonth = "01"
		card.ExpiryYear = "2020"

		result := domain.ValidateCard(card, asOf)

		assert.False(t, result.Valid)
		assert.True(t, result.Expired)
		assert.LessOrEqual(t, result.DaysUntilExpiry, 0)
		assert.Contains(t, result.Message, "expired")
		assert.Contains(t, result.Message, "expirada")
		assert.Equal(t, domain.CardTypeVisa, result.Type)
		assert.Equal(t, "****-****-****-4242", result.MaskedNumber)
	})

	t.Run("current month is still valid", func(t *testing.T) {
		card := validVisa()
		card.ExpiryMonth = "03"
		card.ExpiryYear = "2026"

		result := domain.ValidateCard(card, asOf)

		assert.True(t, result.Valid)
		assert.False(t, result.Expired)
		assert.Equal(t, 17, result.DaysUntilExpiry)
	})

	t.Run("last day of expiry month", func(t *testing.T) {
		card := validVisa()
		card.ExpiryMonth = "03"
		card.ExpiryYear = "2026"

		result := domain.ValidateCard(card, time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC))

		assert.True(t, result.Valid)
		assert.Equal(t, 1, result.DaysUntilExpiry)
	})

	t.Run("first day after expiry month", func(t *testing.T) {
		card := validVisa()
		card.ExpiryMonth = "03"
		card.ExpiryYear = "2026"

		result := domain.ValidateCard(card, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

		assert.False(t, result.Valid)
		assert.True(t, result.Expired)
		assert.Equal(t, 0, result.DaysUntilExpiry)
	})

	t.Run("december rolls into next year", func(t *testing.T) {
		days := domain.DaysUntilExpiry(time.December, 2026, time.Date(2026, time.December, 30, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 2, days)
	})

	t.Run("days and expired agree", func(t *testing.T) {
		card := validVisa()
		for _, year := range []string{"2019", "2025", "2026", "2027"} {
			for _, month := range []string{"01", "02", "03", "04", "12"} {
				card.ExpiryMonth, card.ExpiryYear = month, year
				result := domain.ValidateCard(card, asOf)
				require.Equal(t, result.Expired, result.DaysUntilExpiry <= 0, "%s/%s", month, year)
				require.Equal(t, !result.Expired, result.Valid, "%s/%s", month, year)
			}
		}
	})
}

func TestValidateCard_Idempotent(t *testing.T) {
	inputs := []domain.CardInput{validVisa(), {HolderName: "x"}, {}}
	for _, in := range inputs {
		assert.Equal(t, domain.ValidateCard(in, asOf), domain.ValidateCard(in, asOf))
	}
}
