package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

const defaultCancelReason = "cancelled by merchant"

type CancelService struct {
	router      application.ProcessorRouter
	paymentRepo application.PaymentRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewCancelService(
	router application.ProcessorRouter,
	paymentRepo application.PaymentRepository,
	logger *slog.Logger,
	now func() time.Time,
) *CancelService {
	if now == nil {
		now = time.Now
	}
	return &CancelService{
		router:      router,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         now,
	}
}

// Cancel stops a payment that has not reached a final outcome. A payment the
// processor already accepted is cancelled there first; if the processor has
// settled it in the meantime, that outcome is recorded and the cancel is
// refused.
func (s *CancelService) Cancel(ctx context.Context, paymentID, reason string) (*domain.Payment, error) {
	payment, err := loadPayment(ctx, s.paymentRepo, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.CanCancel() {
		return nil, application.NewInvalidStateError(domain.NewInvalidTransitionError(payment.Status, domain.StatusCancelled))
	}
	if reason == "" {
		reason = defaultCancelReason
	}
	now := s.now().UTC()

	if payment.GatewayTransactionID != nil {
		processor, err := s.router.ByName(payment.GatewayProvider)
		if err != nil {
			return nil, application.NewNoProcessorError(err)
		}

		result, err := processor.Cancel(ctx, *payment.GatewayTransactionID)
		if err != nil {
			s.logger.Error("processor cancel failed",
				"payment_id", payment.ID,
				"provider", payment.GatewayProvider,
				"transaction_id", *payment.GatewayTransactionID,
				"category", application.CategorizeError(err),
				"error", err,
			)
			return nil, application.NewGatewayFailureError(err)
		}

		if result.Status != domain.StatusCancelled {
			if err := payment.ApplyOutcome(result.Status, result.TransactionID, result.FailureReason, now); err == nil {
				if err := s.paymentRepo.Update(context.WithoutCancel(ctx), payment); err != nil {
					s.logger.Error("failed to record processor outcome", "payment_id", payment.ID, "error", err)
				}
			}
			return nil, application.NewInvalidStateError(
				fmt.Errorf("processor reported %s for payment %s", result.Status, payment.ID))
		}
	}

	if err := payment.Cancel(reason, now); err != nil {
		return nil, transitionError(err)
	}
	if err := s.paymentRepo.Update(context.WithoutCancel(ctx), payment); err != nil {
		return nil, application.NewInternalError(fmt.Errorf("record cancellation: %w", err))
	}

	s.logger.Info("payment cancelled",
		"payment_id", payment.ID,
		"provider", payment.GatewayProvider,
		"reason", reason,
	)
	return payment, nil
}

// loadPayment reads the payment an operation acts on.
func loadPayment(ctx context.Context, repo application.PaymentRepository, id string) (*domain.Payment, error) {
	payment, err := repo.FindByID(ctx, id)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodePaymentNotFound) {
			return nil, application.NewNotFoundError(err)
		}
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

func transitionError(err error) error {
	if domain.IsErrorCode(err, domain.ErrCodeInvalidTransition) {
		return application.NewInvalidStateError(err)
	}
	return application.NewInternalError(err)
}
