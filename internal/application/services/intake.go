package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/google/uuid"
)

// RequestValidator is satisfied by validation.PaymentValidator.
type RequestValidator interface {
	Validate(req domain.PaymentRequest) error
}

type IntakeService struct {
	validator   RequestValidator
	router      application.ProcessorRouter
	paymentRepo application.PaymentRepository
	logger      *slog.Logger
	now         func() time.Time
}

type IntakeOption func(*IntakeService)

// WithClock overrides the source of payment timestamps.
func WithClock(now func() time.Time) IntakeOption {
	return func(s *IntakeService) {
		s.now = now
	}
}

func NewIntakeService(
	validator RequestValidator,
	router application.ProcessorRouter,
	paymentRepo application.PaymentRepository,
	logger *slog.Logger,
	opts ...IntakeOption,
) *IntakeService {
	s := &IntakeService{
		validator:   validator,
		router:      router,
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process validates a payment request, records it, and submits it once to the
// processor for its method. A request that fails validation returns a
// *domain.ValidationError and never reaches the processor or the repository.
func (s *IntakeService) Process(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	processor, err := s.router.Resolve(req.Method)
	if err != nil {
		return nil, application.NewNoProcessorError(err)
	}

	now := s.now().UTC()
	payment, err := domain.NewPayment(uuid.New().String(), req, processor.Name(), now)
	if err != nil {
		return nil, application.NewInvalidInputError(err)
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, application.NewDuplicateReferenceError(req.Reference, err)
		}
		return nil, application.NewInternalError(err)
	}

	if err := payment.MarkProcessing(now); err != nil {
		return nil, application.NewInternalError(err)
	}

	result, err := processor.Process(ctx, req)
	if err != nil {
		s.logger.Error("processor call failed",
			"payment_id", payment.ID,
			"reference", payment.Reference,
			"provider", processor.Name(),
			"category", application.CategorizeError(err),
			"error", err,
		)
		if failErr := payment.Fail(fmt.Sprintf("processor error: %v", err), now); failErr == nil {
			s.persist(ctx, payment)
		}
		return nil, application.NewGatewayFailureError(err)
	}

	status, reason := intakeOutcome(result)
	if err := payment.ApplyOutcome(status, result.TransactionID, reason, now); err != nil {
		return nil, application.NewInternalError(err)
	}
	payment.SetRedirectURL(result.RedirectURL)

	// The processor has already acted on the payment, so the outcome is
	// written even if the caller has gone away.
	if err := s.paymentRepo.Update(context.WithoutCancel(ctx), payment); err != nil {
		s.logger.Error("failed to record processor outcome",
			"payment_id", payment.ID,
			"reference", payment.Reference,
			"provider", processor.Name(),
			"transaction_id", result.TransactionID,
			"status", status,
			"error", err,
		)
		return nil, application.NewInternalError(fmt.Errorf("record processor outcome: %w", err))
	}

	s.logger.Info("payment processed",
		"payment_id", payment.ID,
		"reference", payment.Reference,
		"provider", payment.GatewayProvider,
		"status", payment.Status,
		"fee", result.Fee.String(),
	)

	return payment, nil
}

// intakeOutcome maps a processor result to the status an intake response may
// carry. A payment cancelled while it was being submitted was never paid, so
// intake reports it as FAILED.
func intakeOutcome(result *application.ProcessorResult) (domain.PaymentStatus, string) {
	if result.Status != domain.StatusCancelled {
		return result.Status, result.FailureReason
	}
	reason := result.FailureReason
	if reason == "" {
		reason = "payment cancelled by processor"
	}
	return domain.StatusFailed, reason
}

// persist records a failure outcome. The caller is already returning an
// error, so a repository failure here is only logged.
func (s *IntakeService) persist(ctx context.Context, payment *domain.Payment) {
	if err := s.paymentRepo.Update(context.WithoutCancel(ctx), payment); err != nil {
		s.logger.Error("failed to record payment failure",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}
