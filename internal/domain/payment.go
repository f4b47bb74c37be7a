// Package domain holds the payment intake entities and the card validation rules.
package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the settlement channel a client selected.
type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodPayPal     PaymentMethod = "PAYPAL"
)

var knownMethods = []PaymentMethod{MethodCreditCard, MethodDebitCard, MethodPayPal}

func (m PaymentMethod) IsKnown() bool {
	return slices.Contains(knownMethods, m)
}

func (m PaymentMethod) IsCard() bool {
	return m == MethodCreditCard || m == MethodDebitCard
}

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusCancelled  PaymentStatus = "CANCELLED"
	StatusRefunded   PaymentStatus = "REFUNDED"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	status := PaymentStatus(s)
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return status, true
	}
	return "", false
}

// PaymentDetails is the method-specific part of a payment request. The set of
// implementations is closed: only types in this package can satisfy it.
type PaymentDetails interface {
	Method() PaymentMethod
	isPaymentDetails()
}

// CardDetails backs both CREDIT_CARD and DEBIT_CARD payments.
type CardDetails struct {
	Kind PaymentMethod
	Card CardInput
}

func (d CardDetails) Method() PaymentMethod { return d.Kind }
func (CardDetails) isPaymentDetails() {}

type PayPalDetails struct {
	Email     string
	ReturnURL string
	CancelURL string
}

func (PayPalDetails) Method() PaymentMethod { return MethodPayPal }
func (PayPalDetails) isPaymentDetails() {}

// PaymentRequest is an intake request after decoding. Validation tags are
// enforced by the application validator.
type PaymentRequest struct {
	Reference   string          `validate:"required,max=255"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Currency    string          `validate:"required,supported_currency"`
	Method      PaymentMethod   `validate:"required,payment_method"`
	CustomerID  string          `validate:"required,max=255"`
	MerchantID  string          `validate:"required,max=255"`
	Description string
	Details     PaymentDetails `validate:"-"`
}

type Payment struct {
	ID                   string
	Reference            string
	Amount               decimal.Decimal
	Currency             string
	Status               PaymentStatus
	Method               PaymentMethod
	GatewayProvider      string
	GatewayTransactionID *string
	CustomerID           string
	MerchantID           string
	Description          string
	FailureReason        *string
	RedirectURL          *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	CompletedAt          *time.Time
	Version              int
}

// NewPayment creates a PENDING payment for an already validated request.
// Both timestamps are set to now.
func NewPayment(id string, req PaymentRequest, provider string, now time.Time) (*Payment, error) {
	if id == "" {
		return nil, errors.New("payment ID is required")
	}
	if req.Reference == "" {
		return nil, NewMissingRequiredFieldError("paymentReference")
	}
	money, err := NewMoney(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:              id,
		Reference:       req.Reference,
		Amount:          money.Amount,
		Currency:        money.Currency,
		Status:          StatusPending,
		Method:          req.Method,
		GatewayProvider: provider,
		CustomerID:      req.CustomerID,
		MerchantID:      req.MerchantID,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (p *Payment) MarkProcessing(now time.Time) error {
	return p.transition(StatusProcessing, now)
}

// Complete records a settled payment.
func (p *Payment) Complete(transactionID string, now time.Time) error {
	if err := p.transition(StatusCompleted, now); err != nil {
		return err
	}
	p.setTransactionID(transactionID)
	p.CompletedAt = &now
	return nil
}

// AwaitSettlement parks a payment the processor accepted but has not settled,
// for example a PayPal order waiting on payer approval.
func (p *Payment) AwaitSettlement(transactionID string, now time.Time) error {
	if p.Status != StatusPending {
		if err := p.transition(StatusPending, now); err != nil {
			return err
		}
	}
	p.setTransactionID(transactionID)
	p.UpdatedAt = now
	return nil
}

func (p *Payment) Fail(reason string, now time.Time) error {
	if err := p.transition(StatusFailed, now); err != nil {
		return err
	}
	p.FailureReason = &reason
	return nil
}

func (p *Payment) Cancel(reason string, now time.Time) error {
	if err := p.transition(StatusCancelled, now); err != nil {
		return err
	}
	if reason != "" {
		p.FailureReason = &reason
	}
	return nil
}

// Refund records a refund of a settled payment. Only COMPLETED payments can
// be refunded.
func (p *Payment) Refund(now time.Time) error {
	return p.transition(StatusRefunded, now)
}

// SetRedirectURL keeps the page a payer must visit to approve the payment.
func (p *Payment) SetRedirectURL(url string) {
	if url != "" {
		p.RedirectURL = &url
	}
}

// CanCancel reports whether the payment has not reached a final outcome yet.
func (p *Payment) CanCancel() bool {
	return p.canTransitionTo(StatusCancelled) == nil
}

// ApplyOutcome moves the payment to the status a processor reported.
func (p *Payment) ApplyOutcome(status PaymentStatus, transactionID, reason string, now time.Time) error {
	if p.IsTerminal() {
		return NewInvalidTransitionError(p.Status, status)
	}
	p.setTransactionID(transactionID)

	switch status {
	case StatusCompleted:
		return p.Complete(transactionID, now)
	case StatusPending, StatusProcessing:
		return p.AwaitSettlement(transactionID, now)
	case StatusCancelled:
		return p.Cancel(reason, now)
	case StatusFailed:
		return p.Fail(reason, now)
	}
	return p.Fail("unrecognised processor status "+string(status), now)
}

// IsTerminal reports whether no processor outcome can change the payment any
// more. A COMPLETED payment can still be refunded.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

func (p *Payment) setTransactionID(id string) {
	if id != "" {
		p.GatewayTransactionID = &id
	}
}

func (p *Payment) transition(target PaymentStatus, now time.Time) error {
	if err := p.canTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	p.UpdatedAt = now
	return nil
}

// defines the statuses each status may move to
func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case StatusPending:
		return p.allow(target, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled)
	case StatusProcessing:
		return p.allow(target, StatusPending, StatusCompleted, StatusFailed, StatusCancelled)
	case StatusCompleted:
		return p.allow(target, StatusRefunded)
	}
	return NewInvalidTransitionError(p.Status, target)
}

func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(p.Status, target)
}
