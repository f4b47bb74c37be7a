package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// Reconciler settles payments left PENDING by a processor, such as PayPal
// orders awaiting payer approval, by asking the owning processor for their
// current status. Payments the payer has approved are captured.
type Reconciler struct {
	repo         application.PaymentRepository
	router       application.ProcessorRouter
	interval     time.Duration
	batchSize    int
	pendingAfter time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewReconciler(
	repo application.PaymentRepository,
	router application.ProcessorRouter,
	interval time.Duration,
	batchSize int,
	pendingAfter time.Duration,
	logger *slog.Logger,
	now func() time.Time,
) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		repo:         repo,
		router:       router,
		interval:     interval,
		batchSize:    batchSize,
		pendingAfter: pendingAfter,
		logger:       logger,
		now:          now,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.interval,
		"batch_size", r.batchSize,
		"pending_after", r.pendingAfter,
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and returns how many
// payments reached a final status.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	cutoff := r.now().UTC().Add(-r.pendingAfter)
	pending, err := r.repo.FindStalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to fetch pending payments", "error", err)
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.logger.Info("reconciling pending payments", "count", len(pending))

	settled := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return settled
		}
		if r.reconcile(ctx, p) {
			settled++
		}
	}
	return settled
}

func (r *Reconciler) reconcile(ctx context.Context, p *domain.Payment) bool {
	if p.GatewayTransactionID == nil {
		return false
	}

	processor, err := r.router.ByName(p.GatewayProvider)
	if err != nil {
		r.logger.Warn("no processor for pending payment",
			"payment_id", p.ID,
			"provider", p.GatewayProvider,
			"error", err,
		)
		return false
	}

	result, err := processor.Status(ctx, *p.GatewayTransactionID)
	if err != nil {
		r.logLookupError("status lookup failed", p, err)
		return false
	}

	if result.Capturable {
		result, err = processor.Capture(ctx, *p.GatewayTransactionID)
		if err != nil {
			r.logLookupError("capture failed", p, err)
			return false
		}
		r.logger.Info("captured approved payment", "payment_id", p.ID, "provider", p.GatewayProvider)
	}

	if result.Status == domain.StatusPending || result.Status == domain.StatusProcessing {
		return false
	}

	if err := p.ApplyOutcome(result.Status, result.TransactionID, result.FailureReason, r.now().UTC()); err != nil {
		r.logger.Error("cannot apply processor status", "payment_id", p.ID, "status", result.Status, "error", err)
		return false
	}

	if err := r.repo.Update(ctx, p); err != nil {
		r.logger.Error("failed to record reconciled payment", "payment_id", p.ID, "error", err)
		return false
	}

	r.logger.Info("reconciled payment", "payment_id", p.ID, "new_status", p.Status)
	return true
}

func (r *Reconciler) logLookupError(msg string, p *domain.Payment, err error) {
	r.logger.Error(msg,
		"payment_id", p.ID,
		"provider", p.GatewayProvider,
		"category", application.CategorizeError(err),
		"retryable", application.IsRetryable(err),
		"error", err,
	)
}
