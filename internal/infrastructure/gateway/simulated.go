package gateway

import (
	"context"
	"strings"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/google/uuid"
)

const (
	simulatedPrefix = "sim_"
	// DeclinedTestCard is always declined, as it is by the card network sandbox.
	DeclinedTestCard = "4000000000000002"
)

// SimulatedProcessor settles every payment locally. It stands in for the
// real processors when no credentials are configured, applying the limits of
// the processor it replaces for each method.
type SimulatedProcessor struct {
	cardLimits   Limits
	payPalLimits Limits
}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{
		cardLimits:   StripeLimits,
		payPalLimits: PayPalLimits,
	}
}

func (p *SimulatedProcessor) limitsFor(method domain.PaymentMethod) Limits {
	if method == domain.MethodPayPal {
		return p.payPalLimits
	}
	return p.cardLimits
}

func (p *SimulatedProcessor) Name() string {
	return ProviderSimulated
}

func (p *SimulatedProcessor) Supports(method domain.PaymentMethod) bool {
	return method.IsKnown()
}

func (p *SimulatedProcessor) Process(ctx context.Context, req domain.PaymentRequest) (*application.ProcessorResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &application.GatewayError{Provider: ProviderSimulated, Code: "canceled", Message: "request canceled", Err: err}
	}

	txID := simulatedPrefix + uuid.New().String()
	if reason := p.limitsFor(req.Method).Check(req); reason != "" {
		return &application.ProcessorResult{TransactionID: txID, Status: domain.StatusFailed, FailureReason: reason}, nil
	}
	if card, ok := req.Details.(domain.CardDetails); ok && domain.CleanCardNumber(card.Card.Number) == DeclinedTestCard {
		return &application.ProcessorResult{TransactionID: txID, Status: domain.StatusFailed, FailureReason: "Your card was declined."}, nil
	}

	return &application.ProcessorResult{
		TransactionID: txID,
		Status:        domain.StatusCompleted,
		Fee:           EstimateFee(req.Amount),
	}, nil
}

func (p *SimulatedProcessor) Status(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	return simulatedResult(transactionID, transactionID, domain.StatusCompleted)
}

func (p *SimulatedProcessor) Capture(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	return simulatedResult(transactionID, transactionID, domain.StatusCompleted)
}

func (p *SimulatedProcessor) Cancel(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	return simulatedResult(transactionID, transactionID, domain.StatusCancelled)
}

func (p *SimulatedProcessor) Refund(ctx context.Context, transactionID string, amount domain.Money, reason string) (*application.ProcessorResult, error) {
	return simulatedResult(transactionID, simulatedPrefix+"re_"+uuid.New().String(), domain.StatusRefunded)
}

// simulatedResult reports status for a transaction this processor issued.
func simulatedResult(transactionID, resultID string, status domain.PaymentStatus) (*application.ProcessorResult, error) {
	if !strings.HasPrefix(transactionID, simulatedPrefix) {
		return nil, &application.GatewayError{
			Provider:   ProviderSimulated,
			Code:       "not_found",
			Message:    "unknown transaction " + transactionID,
			StatusCode: 404,
		}
	}
	return &application.ProcessorResult{TransactionID: resultID, Status: status}, nil
}
