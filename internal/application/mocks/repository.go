// Package mocks provides in-memory and testify doubles for the application ports.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
)

// MockPaymentRepository stores payments in memory. Any Fn field that is set
// replaces the default behaviour for that method.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFn           func(ctx context.Context, payment *domain.Payment) error
	UpdateFn           func(ctx context.Context, payment *domain.Payment) error
	FindByIDFn         func(ctx context.Context, id string) (*domain.Payment, error)
	FindStalePendingFn func(ctx context.Context, updatedBefore time.Time, limit int) ([]*domain.Payment, error)

	CreateCalls int
	UpdateCalls int
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateFn != nil {
		return m.CreateFn(ctx, payment)
	}
	for _, p := range m.payments {
		if p.Reference == payment.Reference {
			return domain.NewDuplicateReferenceError(payment.Reference)
		}
	}
	payment.Version = 1
	m.payments[payment.ID] = clone(payment)
	return nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, payment)
	}
	stored, ok := m.payments[payment.ID]
	if !ok {
		return domain.NewPaymentNotFoundError(payment.ID)
	}
	if stored.Version != payment.Version {
		return domain.ErrConcurrentModification
	}
	payment.Version++
	m.payments[payment.ID] = clone(payment)
	return nil
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	if p, ok := m.payments[id]; ok {
		return clone(p), nil
	}
	return nil, domain.NewPaymentNotFoundError(id)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.Reference == reference {
			return clone(p), nil
		}
	}
	return nil, domain.NewPaymentNotFoundError(reference)
}

func (m *MockPaymentRepository) FindByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Payment, error) {
	return m.filter(limit, offset, func(p *domain.Payment) bool { return p.CustomerID == customerID }), nil
}

func (m *MockPaymentRepository) FindByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*domain.Payment, error) {
	return m.filter(limit, offset, func(p *domain.Payment) bool { return p.MerchantID == merchantID }), nil
}

func (m *MockPaymentRepository) FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	return m.filter(limit, offset, func(p *domain.Payment) bool { return p.Status == status }), nil
}

func (m *MockPaymentRepository) FindStalePending(ctx context.Context, updatedBefore time.Time, limit int) ([]*domain.Payment, error) {
	if m.FindStalePendingFn != nil {
		return m.FindStalePendingFn(ctx, updatedBefore, limit)
	}
	return m.filter(limit, 0, func(p *domain.Payment) bool {
		return p.Status == domain.StatusPending &&
			p.GatewayTransactionID != nil &&
			p.UpdatedAt.Before(updatedBefore)
	}), nil
}

// Seed stores a payment as-is, bypassing Create.
func (m *MockPaymentRepository) Seed(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = clone(payment)
}

// Len returns the number of stored payments.
func (m *MockPaymentRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

func (m *MockPaymentRepository) filter(limit, offset int, keep func(*domain.Payment) bool) []*domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.Payment
	for _, p := range m.payments {
		if keep(p) {
			matched = append(matched, clone(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*domain.Payment{}
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched
}

func clone(p *domain.Payment) *domain.Payment {
	c := *p
	return &c
}
