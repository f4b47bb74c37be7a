package rest

import (
	"strings"
	"testing"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePaymentRequest_PayPal(t *testing.T) {
	body := `{
		"paymentReference": " order-9 ",
		"amount": 25,
		"currency": " eur",
		"paymentMethod": "PAYPAL",
		"customerId": "cust-1",
		"merchantId": "merch-1",
		"paymentDetails": {"type": "PAYPAL", "email": "buyer@example.com", "returnUrl": "https://shop.example.com/ok", "cancelUrl": "https://shop.example.com/cancel"}
	}`

	req, err := DecodePaymentRequest(strings.NewReader(body))

	require.NoError(t, err)
	assert.Equal(t, "order-9", req.Reference)
	assert.Equal(t, "EUR", req.Currency)
	assert.True(t, decimal.NewFromInt(25).Equal(req.Amount))
	assert.Equal(t, domain.PayPalDetails{
		Email:     "buyer@example.com",
		ReturnURL: "https://shop.example.com/ok",
		CancelURL: "https://shop.example.com/cancel",
	}, req.Details)
}

func TestDecodePaymentRequest_MissingDetailsType(t *testing.T) {
	_, err := DecodePaymentRequest(strings.NewReader(`{"paymentDetails": {"email": "a@b.c"}}`))

	vErr, ok := domain.IsValidationError(err)
	require.True(t, ok)
	assert.True(t, vErr.HasField("paymentDetails.type"))
}

func TestDecodePaymentRequest_NoDetails(t *testing.T) {
	req, err := DecodePaymentRequest(strings.NewReader(`{"paymentMethod": "CREDIT_CARD"}`))

	require.NoError(t, err)
	assert.Nil(t, req.Details)
	assert.True(t, req.Amount.IsZero())
}

func TestDecodePaymentRequest_ShapeErrors(t *testing.T) {
	_, err := DecodePaymentRequest(strings.NewReader(`[1,2]`))
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "Invalid request format", decErr.Message)
}

func TestToPaymentResponse_Flags(t *testing.T) {
	p := &domain.Payment{ID: "id", Amount: decimal.RequireFromString("12.30"), Status: domain.StatusProcessing}

	resp := ToPaymentResponse(p)

	assert.Equal(t, "12.3", resp.Amount.String())
	assert.True(t, resp.Pending)
	assert.False(t, resp.Completed)
	assert.False(t, resp.Failed)
}
