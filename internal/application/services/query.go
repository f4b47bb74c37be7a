package services

import (
	"context"
	"errors"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type QueryService struct {
	paymentRepo application.PaymentRepository
}

func NewQueryService(paymentRepo application.PaymentRepository) *QueryService {
	return &QueryService{
		paymentRepo: paymentRepo,
	}
}

func (s *QueryService) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	return notFound(s.paymentRepo.FindByID(ctx, id))
}

func (s *QueryService) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return notFound(s.paymentRepo.FindByReference(ctx, reference))
}

func (s *QueryService) FindByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Payment, error) {
	limit, offset = page(limit, offset)
	return s.paymentRepo.FindByCustomerID(ctx, customerID, limit, offset)
}

func (s *QueryService) FindByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*domain.Payment, error) {
	limit, offset = page(limit, offset)
	return s.paymentRepo.FindByMerchantID(ctx, merchantID, limit, offset)
}

func (s *QueryService) FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	limit, offset = page(limit, offset)
	return s.paymentRepo.FindByStatus(ctx, status, limit, offset)
}

func notFound(p *domain.Payment, err error) (*domain.Payment, error) {
	if errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, application.NewNotFoundError(err)
	}
	return p, err
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
