package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/shopspring/decimal"
)

// ProcessorResult is what a settlement processor reported for a payment.
// Declines are results with StatusFailed, not errors.
type ProcessorResult struct {
	TransactionID string
	Status        domain.PaymentStatus
	FailureReason string
	Fee           decimal.Decimal
	// RedirectURL is the page the payer must visit before the payment can settle.
	RedirectURL string
	// Capturable is set when the payer approved the payment and only the
	// capture call is outstanding.
	Capturable bool
}

// Processor is the port for an external settlement provider.
type Processor interface {
	Name() string
	Supports(method domain.PaymentMethod) bool
	Process(ctx context.Context, req domain.PaymentRequest) (*ProcessorResult, error)
	Status(ctx context.Context, transactionID string) (*ProcessorResult, error)
	Capture(ctx context.Context, transactionID string) (*ProcessorResult, error)
	Cancel(ctx context.Context, transactionID string) (*ProcessorResult, error)
	Refund(ctx context.Context, transactionID string, amount domain.Money, reason string) (*ProcessorResult, error)
}

// ProcessorRouter picks the processor that settles a payment method.
type ProcessorRouter interface {
	Resolve(method domain.PaymentMethod) (Processor, error)
	ByName(name string) (Processor, error)
}

// PaymentRepository is the port for persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	FindByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Payment, error)
	FindByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*domain.Payment, error)
	FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error)
	FindStalePending(ctx context.Context, updatedBefore time.Time, limit int) ([]*domain.Payment, error)
}
