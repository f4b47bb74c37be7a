package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

type RefundService struct {
	router      application.ProcessorRouter
	paymentRepo application.PaymentRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewRefundService(
	router application.ProcessorRouter,
	paymentRepo application.PaymentRepository,
	logger *slog.Logger,
	now func() time.Time,
) *RefundService {
	if now == nil {
		now = time.Now
	}
	return &RefundService{
		router:      router,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         now,
	}
}

// Refund returns the full amount of a COMPLETED payment to the payer.
func (s *RefundService) Refund(ctx context.Context, paymentID, reason string) (*domain.Payment, error) {
	payment, err := loadPayment(ctx, s.paymentRepo, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != domain.StatusCompleted {
		return nil, application.NewInvalidStateError(domain.NewInvalidTransitionError(payment.Status, domain.StatusRefunded))
	}
	if payment.GatewayTransactionID == nil {
		return nil, application.NewInternalError(errors.New("completed payment has no transaction id"))
	}

	processor, err := s.router.ByName(payment.GatewayProvider)
	if err != nil {
		return nil, application.NewNoProcessorError(err)
	}

	amount := domain.Money{Amount: payment.Amount, Currency: payment.Currency}
	result, err := processor.Refund(ctx, *payment.GatewayTransactionID, amount, reason)
	if err != nil {
		s.logger.Error("processor refund failed",
			"payment_id", payment.ID,
			"provider", payment.GatewayProvider,
			"transaction_id", *payment.GatewayTransactionID,
			"category", application.CategorizeError(err),
			"error", err,
		)
		return nil, application.NewGatewayFailureError(err)
	}
	if result.Status != domain.StatusRefunded {
		return nil, application.NewGatewayFailureError(&application.GatewayError{
			Provider: payment.GatewayProvider,
			Code:     "refund_not_completed",
			Message:  fmt.Sprintf("refund %s reported %s: %s", result.TransactionID, result.Status, result.FailureReason),
		})
	}

	if err := payment.Refund(s.now().UTC()); err != nil {
		return nil, transitionError(err)
	}
	if err := s.paymentRepo.Update(context.WithoutCancel(ctx), payment); err != nil {
		s.logger.Error("failed to record refund",
			"payment_id", payment.ID,
			"provider", payment.GatewayProvider,
			"refund_id", result.TransactionID,
			"error", err,
		)
		return nil, application.NewInternalError(fmt.Errorf("record refund: %w", err))
	}

	s.logger.Info("payment refunded",
		"payment_id", payment.ID,
		"provider", payment.GatewayProvider,
		"refund_id", result.TransactionID,
	)
	return payment, nil
}
