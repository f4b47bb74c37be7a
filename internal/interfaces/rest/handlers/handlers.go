// Package handlers serves the card validation, payment intake, payment query
// and payment cancel/refund endpoints.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest/middleware"
)

type PaymentProcessor interface {
	Process(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error)
}

type CardChecker interface {
	Validate(card domain.CardInput) domain.CardValidationResult
	Classify(number string) domain.CardType
}

type PaymentQuery interface {
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	FindByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Payment, error)
	FindByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*domain.Payment, error)
	FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error)
}

type PaymentCanceller interface {
	Cancel(ctx context.Context, paymentID, reason string) (*domain.Payment, error)
}

type PaymentRefunder interface {
	Refund(ctx context.Context, paymentID, reason string) (*domain.Payment, error)
}

type Handlers struct {
	intake    PaymentProcessor
	cards     CardChecker
	query     PaymentQuery
	canceller PaymentCanceller
	refunder  PaymentRefunder
	logger    *slog.Logger
}

func NewHandlers(
	intake PaymentProcessor,
	cards CardChecker,
	query PaymentQuery,
	canceller PaymentCanceller,
	refunder PaymentRefunder,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		intake:    intake,
		cards:     cards,
		query:     query,
		canceller: canceller,
		refunder:  refunder,
		logger:    logger,
	}
}

// RegisterRoutes mounts every endpoint on mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/credit-cards/validate", h.ValidateCard)
	mux.HandleFunc("GET /api/v1/credit-cards/card-type/{number}", h.CardType)
	mux.HandleFunc("GET /api/v1/credit-cards/health", h.CardHealth)

	mux.Handle("POST /api/v1/payments", middleware.RequireJSON(http.HandlerFunc(h.ProcessPayment)))
	mux.HandleFunc("GET /api/v1/payments/health", h.PaymentHealth)
	mux.HandleFunc("GET /api/v1/payments", h.ListPayments)
	mux.HandleFunc("GET /api/v1/payments/reference/{reference}", h.GetPaymentByReference)
	mux.HandleFunc("GET /api/v1/payments/{id}", h.GetPaymentByID)
	mux.Handle("POST /api/v1/payments/{id}/cancel", middleware.RequireJSON(http.HandlerFunc(h.CancelPayment)))
	mux.Handle("POST /api/v1/payments/{id}/refund", middleware.RequireJSON(http.HandlerFunc(h.RefundPayment)))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
