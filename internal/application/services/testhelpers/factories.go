package testhelpers

import (
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ValidCard returns a VISA test card that stays valid until 2030.
func ValidCard() domain.CardInput {
	return domain.CardInput{
		Number:      "4111111111111111",
		ExpiryMonth: "12",
		ExpiryYear:  "2030",
		CVV:         "123",
		HolderName:  "Ada Lovelace",
	}
}

// DefaultCardRequest returns a valid CREDIT_CARD request with a unique reference.
func DefaultCardRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		Reference:   "order-" + uuid.New().String(),
		Amount:      decimal.RequireFromString("100.00"),
		Currency:    "USD",
		Method:      domain.MethodCreditCard,
		CustomerID:  "cust-" + uuid.New().String(),
		MerchantID:  "merchant-1",
		Description: "test order",
		Details: domain.CardDetails{
			Kind: domain.MethodCreditCard,
			Card: ValidCard(),
		},
	}
}

// DefaultPayPalRequest returns a valid PAYPAL request with a unique reference.
func DefaultPayPalRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		Reference:  "order-" + uuid.New().String(),
		Amount:     decimal.RequireFromString("25.00"),
		Currency:   "EUR",
		Method:     domain.MethodPayPal,
		CustomerID: "cust-" + uuid.New().String(),
		MerchantID: "merchant-1",
		Details: domain.PayPalDetails{
			Email:     "buyer@example.com",
			ReturnURL: "https://shop.example.com/return",
			CancelURL: "https://shop.example.com/cancel",
		},
	}
}

// CreatePendingPayment builds a PENDING payment that a processor has accepted
// but not settled.
func CreatePendingPayment(t *testing.T, provider, transactionID string, updatedAt time.Time) *domain.Payment {
	t.Helper()

	payment, err := domain.NewPayment(uuid.New().String(), DefaultCardRequest(), provider, updatedAt)
	require.NoError(t, err)
	require.NoError(t, payment.MarkProcessing(updatedAt))
	require.NoError(t, payment.AwaitSettlement(transactionID, updatedAt))
	payment.Version = 1

	return payment
}

// CreateCompletedPayment builds a COMPLETED card payment settled under
// transactionID.
func CreateCompletedPayment(t *testing.T, provider, transactionID string, completedAt time.Time) *domain.Payment {
	t.Helper()

	payment, err := domain.NewPayment(uuid.New().String(), DefaultCardRequest(), provider, completedAt)
	require.NoError(t, err)
	require.NoError(t, payment.MarkProcessing(completedAt))
	require.NoError(t, payment.Complete(transactionID, completedAt))
	payment.Version = 1

	return payment
}
