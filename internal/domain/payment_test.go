package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func cardRequest() domain.PaymentRequest {
	return domain.PaymentRequest{
		Reference:   "PAY-123",
		Amount:      decimal.RequireFromString("100.50"),
		Currency:    "usd",
		Method:      domain.MethodCreditCard,
		CustomerID:  "cust-1",
		MerchantID:  "merch-1",
		Description: "order 42",
		Details:     domain.CardDetails{Kind: domain.MethodCreditCard, Card: validVisa()},
	}
}

func newPayment(t *testing.T) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment("pay-123", cardRequest(), "stripe", now)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("creates payment successfully", func(t *testing.T) {
		payment := newPayment(t)

		assert.Equal(t, "pay-123", payment.ID)
		assert.Equal(t, "PAY-123", payment.Reference)
		assert.True(t, decimal.RequireFromString("100.50").Equal(payment.Amount))
		assert.Equal(t, "USD", payment.Currency)
		assert.Equal(t, domain.StatusPending, payment.Status)
		assert.Equal(t, domain.MethodCreditCard, payment.Method)
		assert.Equal(t, "stripe", payment.GatewayProvider)
		assert.Equal(t, now, payment.CreatedAt)
		assert.Equal(t, now, payment.UpdatedAt)
		assert.Nil(t, payment.CompletedAt)
	})

	t.Run("rejects empty payment ID", func(t *testing.T) {
		_, err := domain.NewPayment("", cardRequest(), "stripe", now)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "payment ID is required")
	})

	t.Run("rejects empty reference", func(t *testing.T) {
		req := cardRequest()
		req.Reference = ""

		_, err := domain.NewPayment("pay-123", req, "stripe", now)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		req := cardRequest()
		req.Amount = decimal.Zero

		_, err := domain.NewPayment("pay-123", req, "stripe", now)

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

func TestPayment_StateTransitions(t *testing.T) {
	later := now.Add(time.Second)

	t.Run("pending to processing to completed", func(t *testing.T) {
		p := newPayment(t)

		require.NoError(t, p.MarkProcessing(now))
		require.NoError(t, p.Complete("pi_1", later))

		assert.Equal(t, domain.StatusCompleted, p.Status)
		require.NotNil(t, p.GatewayTransactionID)
		assert.Equal(t, "pi_1", *p.GatewayTransactionID)
		require.NotNil(t, p.CompletedAt)
		assert.Equal(t, later, *p.CompletedAt)
		assert.Equal(t, later, p.UpdatedAt)
		assert.True(t, p.IsTerminal())
	})

	t.Run("processing back to pending awaiting payer", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.MarkProcessing(now))

		require.NoError(t, p.AwaitSettlement("ORDER-1", later))

		assert.Equal(t, domain.StatusPending, p.Status)
		assert.Equal(t, "ORDER-1", *p.GatewayTransactionID)
		assert.False(t, p.IsTerminal())
	})

	t.Run("failure records reason", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.MarkProcessing(now))

		require.NoError(t, p.Fail("card declined", later))

		assert.Equal(t, domain.StatusFailed, p.Status)
		assert.Equal(t, "card declined", *p.FailureReason)
	})

	t.Run("terminal payments reject transitions", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Complete("pi_1", now))

		err := p.Fail("late", later)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))

		err = p.Cancel("", later)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusCompleted, p.Status)
	})

	t.Run("cancel from pending", func(t *testing.T) {
		p := newPayment(t)
		assert.True(t, p.CanCancel())
		require.NoError(t, p.Cancel("voided by payer", later))
		assert.Equal(t, domain.StatusCancelled, p.Status)
		assert.False(t, p.CanCancel())
	})

	t.Run("refund only after completion", func(t *testing.T) {
		p := newPayment(t)
		err := p.Refund(later)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))

		require.NoError(t, p.Complete("pi_1", now))
		assert.False(t, p.CanCancel())
		require.NoError(t, p.Refund(later))

		assert.Equal(t, domain.StatusRefunded, p.Status)
		assert.Equal(t, "pi_1", *p.GatewayTransactionID)
		assert.Equal(t, later, p.UpdatedAt)
		assert.True(t, p.IsTerminal())

		err = p.Refund(later)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("refunded payments ignore processor outcomes", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Complete("pi_1", now))
		require.NoError(t, p.Refund(later))

		err := p.ApplyOutcome(domain.StatusCompleted, "pi_1", "", later)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusRefunded, p.Status)
	})
}

func TestPayment_SetRedirectURL(t *testing.T) {
	p := newPayment(t)
	p.SetRedirectURL("")
	assert.Nil(t, p.RedirectURL)

	p.SetRedirectURL("https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1")
	require.NotNil(t, p.RedirectURL)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=ORDER-1", *p.RedirectURL)
}

func TestPayment_ApplyOutcome(t *testing.T) {
	tests := []struct {
		status domain.PaymentStatus
		want   domain.PaymentStatus
	}{
		{domain.StatusCompleted, domain.StatusCompleted},
		{domain.StatusPending, domain.StatusPending},
		{domain.StatusProcessing, domain.StatusPending},
		{domain.StatusFailed, domain.StatusFailed},
		{domain.StatusCancelled, domain.StatusCancelled},
		{domain.PaymentStatus("WEIRD"), domain.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := newPayment(t)
			require.NoError(t, p.MarkProcessing(now))

			require.NoError(t, p.ApplyOutcome(tt.status, "tx-1", "reason", now))

			assert.Equal(t, tt.want, p.Status)
			assert.Equal(t, "tx-1", *p.GatewayTransactionID)
		})
	}
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, domain.MethodCreditCard.IsKnown())
	assert.True(t, domain.MethodPayPal.IsKnown())
	assert.False(t, domain.PaymentMethod("BITCOIN").IsKnown())
	assert.True(t, domain.MethodDebitCard.IsCard())
	assert.False(t, domain.MethodPayPal.IsCard())

	var details domain.PaymentDetails = domain.PayPalDetails{}
	assert.Equal(t, domain.MethodPayPal, details.Method())
	details = domain.CardDetails{Kind: domain.MethodDebitCard}
	assert.Equal(t, domain.MethodDebitCard, details.Method())
}

func TestParsePaymentStatus(t *testing.T) {
	s, ok := domain.ParsePaymentStatus("COMPLETED")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusCompleted, s)

	s, ok = domain.ParsePaymentStatus("REFUNDED")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusRefunded, s)

	_, ok = domain.ParsePaymentStatus("completed")
	assert.False(t, ok)
}
