package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/config"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// testPaymentMethods maps sandbox card numbers to the payment methods Stripe
// provisions for them.
var testPaymentMethods = map[string]string{
	"4242424242424242": "pm_card_visa",
	"4000056655665556": "pm_card_visa_debit",
	"5555555555554444": "pm_card_mastercard",
	"378282246310005":  "pm_card_amex",
	DeclinedTestCard:   "pm_card_chargeDeclined",
}

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

type stripeRefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeProcessor settles card payments through PaymentIntents, confirming
// each intent on creation.
type StripeProcessor struct {
	api     stripePaymentIntentAPI
	refunds stripeRefundAPI
	limits  Limits
	logger  *slog.Logger
}

func NewStripeProcessor(cfg config.StripeConfig, logger *slog.Logger) *StripeProcessor {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     &stripeLogger{logger: logger},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripe.String(cfg.BaseURL)
	}

	sc := client.New(cfg.SecretKey, &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
	})

	return &StripeProcessor{
		api:     sc.PaymentIntents,
		refunds: sc.Refunds,
		limits:  StripeLimits,
		logger:  logger,
	}
}

func (p *StripeProcessor) Name() string {
	return ProviderStripe
}

func (p *StripeProcessor) Supports(method domain.PaymentMethod) bool {
	return method.IsCard()
}

func (p *StripeProcessor) Process(ctx context.Context, req domain.PaymentRequest) (*application.ProcessorResult, error) {
	card, ok := req.Details.(domain.CardDetails)
	if !ok {
		return nil, &application.GatewayError{
			Provider: ProviderStripe,
			Code:     "unsupported_method",
			Message:  fmt.Sprintf("cannot settle %s payments", req.Method),
		}
	}

	if reason := p.limits.Check(req); reason != "" {
		return &application.ProcessorResult{Status: domain.StatusFailed, FailureReason: reason}, nil
	}

	money, err := domain.NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(money.MinorUnits()),
		Currency:           stripe.String(strings.ToLower(money.Currency)),
		PaymentMethod:      stripe.String(paymentMethodFor(card)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	params.AddMetadata("payment_reference", req.Reference)
	params.AddMetadata("customer_id", req.CustomerID)
	params.AddMetadata("merchant_id", req.MerchantID)

	intent, err := p.api.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return &application.ProcessorResult{
				TransactionID: stripeErr.ChargeID,
				Status:        domain.StatusFailed,
				FailureReason: stripeErr.Msg,
			}, nil
		}
		return nil, toGatewayError(err)
	}

	result := intentResult(intent)
	if result.Status == domain.StatusCompleted {
		result.Fee = EstimateFee(req.Amount)
	}
	return result, nil
}

func (p *StripeProcessor) Status(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := p.api.Get(transactionID, params)
	if err != nil {
		return nil, toGatewayError(err)
	}
	return intentResult(intent), nil
}

// Capture collects an intent that was authorized but not captured.
func (p *StripeProcessor) Capture(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	intent, err := p.api.Capture(transactionID, params)
	if err != nil {
		return nil, toGatewayError(err)
	}
	return intentResult(intent), nil
}

func (p *StripeProcessor) Cancel(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String("requested_by_customer"),
	}
	params.Context = ctx

	intent, err := p.api.Cancel(transactionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		// A succeeded intent can no longer be cancelled; report what it is.
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
			return p.Status(ctx, transactionID)
		}
		return nil, toGatewayError(err)
	}
	return intentResult(intent), nil
}

// Refund returns the full amount of a succeeded intent.
func (p *StripeProcessor) Refund(ctx context.Context, transactionID string, amount domain.Money, reason string) (*application.ProcessorResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
		Amount:        stripe.Int64(amount.MinorUnits()),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	refund, err := p.refunds.New(params)
	if err != nil {
		return nil, toGatewayError(err)
	}

	result := &application.ProcessorResult{TransactionID: refund.ID}
	switch refund.Status {
	case stripe.RefundStatusSucceeded, stripe.RefundStatusPending:
		result.Status = domain.StatusRefunded
	default:
		result.Status = domain.StatusFailed
		result.FailureReason = "refund " + string(refund.Status)
		if refund.FailureReason != "" {
			result.FailureReason += ": " + string(refund.FailureReason)
		}
	}
	return result, nil
}

func intentResult(intent *stripe.PaymentIntent) *application.ProcessorResult {
	result := &application.ProcessorResult{
		TransactionID: intent.ID,
		Status:        mapIntentStatus(intent.Status),
		Capturable:    intent.Status == stripe.PaymentIntentStatusRequiresCapture,
	}
	if result.Status == domain.StatusFailed || result.Status == domain.StatusCancelled {
		if intent.LastPaymentError != nil {
			result.FailureReason = intent.LastPaymentError.Msg
		} else {
			result.FailureReason = "payment intent " + string(intent.Status)
		}
	}
	return result
}

func mapIntentStatus(status stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.StatusCompleted
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return domain.StatusPending
	case stripe.PaymentIntentStatusCanceled:
		return domain.StatusCancelled
	default:
		return domain.StatusFailed
	}
}

// paymentMethodFor picks the sandbox payment method for a card. Unknown
// numbers fall back to the brand's generic test method.
func paymentMethodFor(card domain.CardDetails) string {
	number := domain.CleanCardNumber(card.Card.Number)
	if pm, ok := testPaymentMethods[number]; ok {
		return pm
	}
	switch domain.ClassifyCard(number) {
	case domain.CardTypeMastercard:
		return "pm_card_mastercard"
	case domain.CardTypeAmex:
		return "pm_card_amex"
	}
	if card.Kind == domain.MethodDebitCard {
		return "pm_card_visa_debit"
	}
	return "pm_card_visa"
}

func toGatewayError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &application.GatewayError{
			Provider:   ProviderStripe,
			Code:       string(stripeErr.Type),
			Message:    stripeErr.Msg,
			StatusCode: stripeErr.HTTPStatusCode,
			Err:        err,
		}
	}
	return &application.GatewayError{
		Provider: ProviderStripe,
		Code:     "network_error",
		Message:  "request to stripe failed",
		Err:      err,
	}
}

// stripeLogger routes stripe-go's leveled logging into slog.
type stripeLogger struct {
	logger *slog.Logger
}

func (l *stripeLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "provider", ProviderStripe)
}

func (l *stripeLogger) Infof(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...), "provider", ProviderStripe)
}

func (l *stripeLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "provider", ProviderStripe)
}

func (l *stripeLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "provider", ProviderStripe)
}
