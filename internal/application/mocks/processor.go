package mocks

import (
	"context"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockProcessor struct {
	mock.Mock
	name    string
	methods []domain.PaymentMethod
}

func NewMockProcessor(name string, methods ...domain.PaymentMethod) *MockProcessor {
	return &MockProcessor{name: name, methods: methods}
}

func (m *MockProcessor) Name() string {
	return m.name
}

func (m *MockProcessor) Supports(method domain.PaymentMethod) bool {
	for _, supported := range m.methods {
		if supported == method {
			return true
		}
	}
	return false
}

func (m *MockProcessor) Process(ctx context.Context, req domain.PaymentRequest) (*application.ProcessorResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*application.ProcessorResult)
	return result, args.Error(1)
}

func (m *MockProcessor) Status(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	args := m.Called(ctx, transactionID)
	result, _ := args.Get(0).(*application.ProcessorResult)
	return result, args.Error(1)
}

func (m *MockProcessor) Capture(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	args := m.Called(ctx, transactionID)
	result, _ := args.Get(0).(*application.ProcessorResult)
	return result, args.Error(1)
}

func (m *MockProcessor) Cancel(ctx context.Context, transactionID string) (*application.ProcessorResult, error) {
	args := m.Called(ctx, transactionID)
	result, _ := args.Get(0).(*application.ProcessorResult)
	return result, args.Error(1)
}

func (m *MockProcessor) Refund(ctx context.Context, transactionID string, amount domain.Money, reason string) (*application.ProcessorResult, error) {
	args := m.Called(ctx, transactionID, amount, reason)
	result, _ := args.Get(0).(*application.ProcessorResult)
	return result, args.Error(1)
}
